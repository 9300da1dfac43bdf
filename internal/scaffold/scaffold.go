// Package scaffold implements the Filesystem Scaffolder (spec.md §4.1):
// idempotent, order-preserving application of declarative mount,
// device-node, and symlink tables. No operation here aborts the
// process — failures are logged and the batch continues, because the
// components that run afterward (Root Pivoter, exec) will fail loudly
// if something genuinely required is missing.
package scaffold

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"launcher/internal/diag"
)

// StageHostMounts applies hostStageMounts under root, in table order.
// Called by the Namespace Launcher before the child is spawned.
func StageHostMounts(root string, sink *diag.Sink) {
	for _, m := range hostStageMounts {
		target := filepath.Join(root, m.Destination)

		if err := os.MkdirAll(target, m.DirPerm); err != nil && !os.IsExist(err) {
			sink.Warn(err, "mkdir %s", target)
			continue
		}

		flags, data := flagsAndData(m.Options)
		if err := unix.Mount(m.Source, target, m.Type, flags, data); err != nil {
			sink.Warn(err, "mount %s -> %s (%s)", m.Source, target, m.Type)
		}
	}
}

// UnstageHostMounts lazy-detaches hostStageMounts under root in reverse
// table order. Called by the Namespace Launcher once the child's mount
// namespace has cloned a copy; best-effort, every failure is logged
// only.
func UnstageHostMounts(root string, sink *diag.Sink) {
	for i := len(hostStageMounts) - 1; i >= 0; i-- {
		target := filepath.Join(root, hostStageMounts[i].Destination)
		if err := unix.Unmount(target, unix.MNT_DETACH); err != nil {
			sink.Warn(err, "unmount %s", target)
		}
	}
}

// CreateHostDevices creates hostDeviceNodes under root. Failures are
// logged, not fatal — this lets the launcher run without CAP_MKNOD; the
// container simply lacks that device.
func CreateHostDevices(root string, sink *diag.Sink) {
	for _, d := range hostDeviceNodes {
		path := filepath.Join(root, d.Path)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !os.IsExist(err) {
			sink.Warn(err, "mkdir %s", filepath.Dir(path))
			continue
		}

		mode := uint32(unix.S_IFCHR)
		if d.FileMode != nil {
			mode |= uint32(*d.FileMode)
		}
		dev := unix.Mkdev(uint32(d.Major), uint32(d.Minor))

		if err := unix.Mknod(path, mode, int(dev)); err != nil && !errors.Is(err, unix.EEXIST) {
			sink.Warn(err, "mknod %s", path)
		}
	}
}

// CreateContainerMounts applies containerMounts. Invoked post-pivot,
// from inside the container's mount namespace.
func CreateContainerMounts(sink *diag.Sink) {
	for _, m := range containerMounts {
		if err := os.MkdirAll(m.Destination, m.DirPerm); err != nil && !os.IsExist(err) {
			sink.Warn(err, "mkdir %s", m.Destination)
			continue
		}

		flags, data := flagsAndData(m.Options)
		if err := unix.Mount(m.Source, m.Destination, m.Type, flags, data); err != nil {
			sink.Warn(err, "mount %s -> %s (%s)", m.Source, m.Destination, m.Type)
		}
	}
}

// CreateContainerSymlinks creates deviceSymlinks. Invoked post-pivot.
func CreateContainerSymlinks(sink *diag.Sink) {
	for _, l := range deviceSymlinks {
		if err := os.Symlink(l.LinkTarget, l.LinkPath); err != nil && !errors.Is(err, unix.EEXIST) && !os.IsExist(err) {
			sink.Warn(err, "symlink %s -> %s", l.LinkPath, l.LinkTarget)
		}
	}
}
