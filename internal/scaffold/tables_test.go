package scaffold

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestFlagsAndDataSplitsKnownOptions(t *testing.T) {
	flags, data := flagsAndData([]string{"nosuid", "noexec", "nodev", "ro"})

	want := uintptr(unix.MS_NOSUID | unix.MS_NOEXEC | unix.MS_NODEV | unix.MS_RDONLY)
	if flags != want {
		t.Fatalf("expected flags %#x, got %#x", want, flags)
	}
	if data != "" {
		t.Fatalf("expected no leftover data, got %q", data)
	}
}

func TestFlagsAndDataPassesThroughUnknownOptions(t *testing.T) {
	flags, data := flagsAndData([]string{"nosuid", "mode=0620", "ptmxmode=0666"})

	if flags != unix.MS_NOSUID {
		t.Fatalf("expected only MS_NOSUID, got %#x", flags)
	}
	if data != "mode=0620,ptmxmode=0666" {
		t.Fatalf("unexpected data string: %q", data)
	}
}

func TestFlagsAndDataEmpty(t *testing.T) {
	flags, data := flagsAndData(nil)
	if flags != 0 || data != "" {
		t.Fatalf("expected zero value for empty options, got flags=%#x data=%q", flags, data)
	}
}

func TestScaffoldTablesAreWellFormed(t *testing.T) {
	for _, m := range hostStageMounts {
		if m.Destination == "" || m.Type == "" {
			t.Fatalf("host-stage mount entry missing destination/type: %+v", m)
		}
	}
	for _, m := range containerMounts {
		if m.Destination == "" || m.Type == "" {
			t.Fatalf("container mount entry missing destination/type: %+v", m)
		}
	}
	for _, d := range hostDeviceNodes {
		if d.Path == "" || d.Type != "c" {
			t.Fatalf("device entry not a character device: %+v", d)
		}
	}
	for _, l := range deviceSymlinks {
		if l.LinkTarget == "" || l.LinkPath == "" {
			t.Fatalf("symlink entry missing target/path: %+v", l)
		}
	}
}
