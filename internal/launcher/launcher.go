// Package launcher implements the Namespace Launcher (spec.md §4.4):
// the parent-side orchestrator that stages the filesystem, spawns the
// child into new namespaces via a self re-exec, writes its identity
// map, and releases the pipe-EOF barrier.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"launcher/internal/childinit"
	"launcher/internal/diag"
	"launcher/internal/idmap"
	"launcher/internal/request"
	"launcher/internal/scaffold"
)

// selfExePath is the re-exec target. /proc/self/exe always resolves to
// the currently running binary on Linux, regardless of how argv[0] was
// spelled or whether it's still on PATH.
const selfExePath = "/proc/self/exe"

// Run executes one full launcher invocation and returns the exit code
// the process should use: 0 once the child has been reaped, whatever
// its own exit status, and 1 only when waiting for the child fails.
// Child-side failures are diagnosed by the child itself; fatal
// parent-side setup failures terminate the process through sink.Die.
func Run(req *request.Request, sink *diag.Sink) int {
	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		sink.Die(err, "create synchronization pipe")
	}

	scaffold.StageHostMounts(req.NewRootPath, sink)
	scaffold.CreateHostDevices(req.NewRootPath, sink)

	cmd := buildChildCmd(req, readEnd, writeEnd)

	if err := cmd.Start(); err != nil {
		sink.Die(err, "spawn child process")
	}
	sink.Narrate("spawned child pid %d", cmd.Process.Pid)

	// The parent never reads the barrier; its copy of the read end is
	// pure fd hygiene once the child has its own via ExtraFiles.
	readEnd.Close()

	scaffold.UnstageHostMounts(req.NewRootPath, sink)

	if req.MapToRoot {
		if err := idmap.Write(cmd.Process.Pid, os.Getuid(), os.Getgid()); err != nil {
			sink.Die(err, "write identity map for pid %d", cmd.Process.Pid)
		}
		sink.Narrate("mapped uid/gid 0 -> %d/%d", os.Getuid(), os.Getgid())
	}

	// Releasing the barrier: this is the last copy of the write end
	// anywhere (the child closed its own in childinit.Run), so closing
	// it delivers EOF to the child's blocked read.
	if err := writeEnd.Close(); err != nil {
		sink.Die(err, "release synchronization barrier")
	}

	// The child's own exit status is not propagated (spec.md §6,
	// acknowledged limitation): any exec.ExitError here just means the
	// contained command returned non-zero, which is still a successful
	// reap from the launcher's point of view. Only a Wait() failure that
	// isn't an ExitError (e.g. the child was never actually reapable)
	// counts as a launcher-level error.
	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			sink.Warn(err, "wait for child pid %d", cmd.Process.Pid)
			return 1
		}
	}

	return 0
}

// buildChildCmd assembles the re-exec command: argv[0] is this same
// binary, argv[1] is the child-init marker, argv[2:] is the command to
// run inside the container. The pipe's two ends travel across the exec
// boundary via ExtraFiles, landing at fixed fds 3 and 4 in the child.
func buildChildCmd(req *request.Request, readEnd, writeEnd *os.File) *exec.Cmd {
	argv := append([]string{childinit.ReexecArg}, req.Command...)
	cmd := exec.Command(selfExePath, argv...)

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{readEnd, writeEnd}

	cmd.Env = append(os.Environ(),
		fmt.Sprintf("LAUNCHER_NEW_ROOT=%s", req.NewRootPath),
		fmt.Sprintf("LAUNCHER_HOSTNAME=%s", req.Hostname),
		fmt.Sprintf("LAUNCHER_VERBOSE=%s", verboseFlag(req.Verbose)),
	)

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: uintptr(req.Namespaces),
		Pdeathsig:  syscall.SIGKILL,
	}

	return cmd
}

func verboseFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
