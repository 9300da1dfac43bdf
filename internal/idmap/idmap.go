// Package idmap implements the Identity Mapper (spec.md §4.3): writing
// the uid/gid/setgroups files of a just-spawned child from the parent,
// so the child can appear as root inside its own user namespace.
package idmap

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write persists the three /proc/<pid>/... mapping files for pid,
// mapping uid/gid 0 inside the child's user namespace to uid/gid
// outside it. The setgroups-before-gid_map ordering is mandatory:
// modern kernels refuse an unprivileged gid_map write until setgroups
// has been set to "deny". Any write failure is returned as-is; the
// caller (the Namespace Launcher) treats it as fatal.
func Write(pid, uid, gid int) error {
	procDir := fmt.Sprintf("/proc/%d", pid)

	if err := writeFile(filepath.Join(procDir, "uid_map"), fmt.Sprintf("0 %d 1\n", uid)); err != nil {
		return fmt.Errorf("write uid_map: %w", err)
	}
	if err := writeFile(filepath.Join(procDir, "setgroups"), "deny"); err != nil {
		return fmt.Errorf("write setgroups: %w", err)
	}
	if err := writeFile(filepath.Join(procDir, "gid_map"), fmt.Sprintf("0 %d 1", gid)); err != nil {
		return fmt.Errorf("write gid_map: %w", err)
	}

	return nil
}

// writeFile opens path read-write and writes data in a single syscall,
// treating a short write as failure — these /proc files reject
// anything but a single complete write per open.
func writeFile(path, data string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.Write([]byte(data))
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("short write to %s (%d of %d bytes)", path, n, len(data))
	}

	return nil
}
