// Package pivot implements the Root Pivoter (spec.md §4.2): the
// ordered pivot_root sequence that runs inside the child's mount
// namespace, with rollback of the working directory on partial
// failure.
package pivot

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PutRootName is the scratch directory name created under the new root
// to receive the old root during pivot_root, e.g. ".old_root".
const PutRootName = ".old_root"

// cwdGuard holds the one piece of state the rollback path needs: a
// directory descriptor for the working directory at entry, released on
// every exit path (success or rollback) exactly once.
type cwdGuard struct {
	fd     int
	closed bool
}

func acquireCwdGuard() (*cwdGuard, error) {
	fd, err := unix.Open(".", unix.O_DIRECTORY|unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open cwd: %w", err)
	}
	return &cwdGuard{fd: fd}, nil
}

func (g *cwdGuard) restore() {
	if g.closed {
		return
	}
	_ = unix.Fchdir(g.fd)
	_ = unix.Close(g.fd)
	g.closed = true
}

func (g *cwdGuard) discard() {
	if g.closed {
		return
	}
	_ = unix.Close(g.fd)
	g.closed = true
}

// Root performs the ordered pivot_root procedure described in
// spec.md §4.2 steps 1-9, inside the caller's mount namespace. On any
// failure it rolls back the working directory and returns the first
// error encountered; on success putRootPath has already been
// lazy-detached and removed and there is nothing further to release.
func Root(newRootPath, putRootName string) error {
	// Step 1: mark / recursively private so our mount operations don't
	// propagate back to the host.
	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("make / private: %w", err)
	}

	// Step 2: bind-mount newRootPath onto itself recursively. This
	// promotes it to a mount point (pivot_root requires that) and
	// captures any sub-mounts beneath it.
	if err := unix.Mount(newRootPath, newRootPath, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount %s onto itself: %w", newRootPath, err)
	}

	// Step 3: retain the current working directory for rollback.
	guard, err := acquireCwdGuard()
	if err != nil {
		return err
	}

	// Steps 4-9 run under the guard; any failure rolls back through it.
	if err := pivotSteps(newRootPath, putRootName, guard); err != nil {
		rollback(putRootName, guard)
		return err
	}

	guard.discard()
	return nil
}

func pivotSteps(newRootPath, putRootName string, guard *cwdGuard) error {
	// Step 4: move into the new root so pivot_root operates on "."
	if err := unix.Chdir(newRootPath); err != nil {
		return fmt.Errorf("chdir %s: %w", newRootPath, err)
	}

	// Step 5: scratch directory to receive the old root.
	if err := unix.Mkdir(putRootName, 0o700); err != nil && err != unix.EEXIST {
		return fmt.Errorf("mkdir %s: %w", putRootName, err)
	}

	// Step 6: swap root and old root.
	if err := unix.PivotRoot(".", putRootName); err != nil {
		return fmt.Errorf("pivot_root: %w", err)
	}

	// Step 7: the new root is now "/".
	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("chdir /: %w", err)
	}

	// Step 8: detach the old root so it's no longer visible.
	if err := unix.Unmount("/"+putRootName, unix.MNT_DETACH); err != nil {
		return fmt.Errorf("unmount %s: %w", putRootName, err)
	}

	// Step 9: remove the now-empty scratch directory.
	if err := unix.Rmdir("/" + putRootName); err != nil {
		return fmt.Errorf("rmdir %s: %w", putRootName, err)
	}

	return nil
}

// rollback is best-effort: every step is attempted regardless of
// whether an earlier rollback step failed, and the caller's original
// error is what gets returned — rollback failures are not reported
// here since the caller is already on a fatal path.
func rollback(putRootName string, guard *cwdGuard) {
	_ = unix.Unmount(putRootName, unix.MNT_DETACH)
	_ = unix.Rmdir(putRootName)
	guard.restore()
}
