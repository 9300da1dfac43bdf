// Package diag is the launcher's diagnostic sink: a single writer with
// two severities (warn, die) producing the single-line ERROR records
// spec.md's external logging collaborator is described at the
// interface of.
package diag

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// Sink writes diagnostics to fixed streams and carries the verbose
// flag that gates stdout narration. The launcher threads one Sink
// through its components instead of relying on package-level globals.
type Sink struct {
	Verbose bool

	stdout *os.File
	stderr *os.File
}

// New returns a Sink writing narration to stdout and ERROR records to
// stderr.
func New(verbose bool) *Sink {
	return &Sink{Verbose: verbose, stdout: os.Stdout, stderr: os.Stderr}
}

// Narrate writes a verbose-only line to stdout. A no-op unless Verbose
// is set.
func (s *Sink) Narrate(format string, args ...any) {
	if !s.Verbose {
		return
	}
	fmt.Fprintf(s.stdout, format+"\n", args...)
}

// Warn logs a non-fatal failure and returns. Used by the Scaffolder
// for individual table entries and by the Root Pivoter's rollback
// path.
func (s *Sink) Warn(err error, format string, args ...any) {
	s.writeErrorLine(err, format, args...)
}

// Die logs a fatal failure and terminates the process. It never
// returns: every Die call site can treat it as the end of that
// goroutine's control flow.
func (s *Sink) Die(err error, format string, args ...any) {
	s.writeErrorLine(err, format, args...)
	s.stderr.Sync()
	terminate()
}

func (s *Sink) writeErrorLine(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.stdout.Sync()

	var errno unix.Errno
	if err != nil && errors.As(err, &errno) {
		fmt.Fprintf(s.stderr, "ERROR [%s %s] %s\n", unix.ErrnoName(errno), errno.Error(), msg)
		return
	}
	if err != nil {
		fmt.Fprintf(s.stderr, "ERROR: %s: %s\n", msg, err)
		return
	}
	fmt.Fprintf(s.stderr, "ERROR: %s\n", msg)
}

// terminate implements spec.md §6's EF_DUMPCORE behavior: when the
// environment variable is set and non-empty, abort with a core dump
// instead of a clean exit. panic/recover cannot produce the same
// kernel-level core dump a C abort() does, so the Go analog sends
// SIGABRT to the current process directly.
func terminate() {
	if s := os.Getenv("EF_DUMPCORE"); s != "" {
		// The Go runtime only dumps core on SIGABRT at traceback level
		// "crash"; otherwise it prints a stack dump and exits.
		debug.SetTraceback("crash")
		_ = unix.Kill(unix.Getpid(), unix.SIGABRT)
		// Kill(SIGABRT) on self does not return in the common case; if
		// the signal is somehow blocked, fall through to a clean exit
		// so the process still terminates with a failure code.
	}
	os.Exit(1)
}
