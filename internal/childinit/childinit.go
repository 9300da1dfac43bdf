// Package childinit implements the Child Initializer (spec.md §4.5):
// the re-exec'd entry point that runs inside the freshly cloned
// namespaces, waits on the pipe-EOF barrier, and replaces itself with
// the target command.
package childinit

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"launcher/internal/diag"
	"launcher/internal/pivot"
	"launcher/internal/scaffold"
)

// ReexecArg is the argv[1] marker main.go looks for to dispatch into
// Run instead of the cobra CLI. It is never user-visible: the
// Namespace Launcher is the only caller that ever constructs an argv
// starting with it.
const ReexecArg = "__launcher_childinit__"

// Pipe file descriptors inside the child, fixed by the order the
// Namespace Launcher passes them in cmd.ExtraFiles (index 0 -> fd 3,
// index 1 -> fd 4).
const (
	pipeReadFD  = 3
	pipeWriteFD = 4
)

// Environment variables the Namespace Launcher uses to pass the parts
// of the Request the child needs; everything else (the command itself)
// arrives as argv[2:].
const (
	envNewRoot  = "LAUNCHER_NEW_ROOT"
	envHostname = "LAUNCHER_HOSTNAME"
	envVerbose  = "LAUNCHER_VERBOSE"
)

// Run is the child process's entire body. It never returns on success:
// the final step replaces the process image. command is argv[2:] from
// main.go (the target command and its arguments).
func Run(command []string) {
	sink := diag.New(os.Getenv(envVerbose) == "1")

	newRoot := os.Getenv(envNewRoot)
	hostname := os.Getenv(envHostname)

	if err := waitForBarrier(); err != nil {
		sink.Die(err, "barrier wait")
	}

	if err := unix.Sethostname([]byte(hostname)); err != nil {
		sink.Die(err, "sethostname %s", hostname)
	}
	sink.Narrate("set hostname: %s", hostname)

	if err := pivot.Root(newRoot, pivot.PutRootName); err != nil {
		sink.Die(err, "container_pivot_root")
	}

	scaffold.CreateContainerMounts(sink)
	scaffold.CreateContainerSymlinks(sink)

	if len(command) == 0 {
		sink.Die(nil, "No command provided")
	}

	sink.Narrate("executing command: %s", command[0])

	execPath, err := exec.LookPath(command[0])
	if err != nil {
		sink.Die(err, "execvp %s", command[0])
	}

	if err := unix.Exec(execPath, command, os.Environ()); err != nil {
		sink.Die(err, "execvp %s", execPath)
	}
}

// waitForBarrier closes the child's inherited copy of the pipe's write
// end, then reads one byte from the read end. Per spec.md §4.5 step 2,
// the read must return 0 bytes (EOF); any other outcome means the
// parent failed before releasing the barrier and must not be trusted.
func waitForBarrier() error {
	writeEnd := os.NewFile(pipeWriteFD, "launcher-pipe-w")
	if writeEnd != nil {
		writeEnd.Close()
	}

	readEnd := os.NewFile(pipeReadFD, "launcher-pipe-r")
	if readEnd == nil {
		return fmt.Errorf("barrier read fd %d unavailable", pipeReadFD)
	}
	defer readEnd.Close()

	var b [1]byte
	n, err := readEnd.Read(b[:])
	if n != 0 || err == nil {
		return fmt.Errorf("expected EOF on barrier read, got %d bytes (err=%v)", n, err)
	}
	if err.Error() != "EOF" {
		return fmt.Errorf("unexpected barrier read error: %w", err)
	}

	return nil
}
