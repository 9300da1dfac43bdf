package diag

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func newTestSink(t *testing.T) (*Sink, *os.File, func() string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}

	s := &Sink{Verbose: true, stdout: os.Stdout, stderr: w}

	return s, w, func() string {
		w.Close()
		var buf strings.Builder
		chunk := make([]byte, 4096)
		for {
			n, err := r.Read(chunk)
			if n > 0 {
				buf.Write(chunk[:n])
			}
			if err != nil {
				break
			}
		}
		return buf.String()
	}
}

func TestWarnWithoutErrno(t *testing.T) {
	s, _, drain := newTestSink(t)

	s.Warn(nil, "mkdir %s", "/dev/shm")

	out := drain()
	if !strings.HasPrefix(out, "ERROR: mkdir /dev/shm") {
		t.Fatalf("unexpected error line: %q", out)
	}
}

func TestWarnWithWrappedErrno(t *testing.T) {
	s, _, drain := newTestSink(t)

	wrapped := fmt.Errorf("mount /dev: %w", unix.EEXIST)
	s.Warn(wrapped, "mount %s", "/dev")

	out := drain()
	if !strings.Contains(out, "EEXIST") {
		t.Fatalf("expected errno name EEXIST in output, got %q", out)
	}
	if !strings.Contains(out, "mount /dev") {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestWarnWithNonErrnoError(t *testing.T) {
	s, _, drain := newTestSink(t)

	s.Warn(fmt.Errorf("boom"), "step %d", 3)

	out := drain()
	if !strings.Contains(out, "step 3") || !strings.Contains(out, "boom") {
		t.Fatalf("unexpected error line: %q", out)
	}
}
