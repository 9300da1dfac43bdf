package scaffold

import (
	"os"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"
)

// mountEntry is one row of a mount table. It embeds the OCI runtime-spec
// Mount type for its source/destination/type/options vocabulary — the
// launcher never reads an OCI bundle, but the spec's Mount shape is
// exactly what a declarative mount table row needs, and reusing it
// keeps the runtime-spec dependency exercised by the scaffolding tables
// rather than dropped outright.
type mountEntry struct {
	specs.Mount
	DirPerm os.FileMode
}

// deviceEntry is one row of the device-node table, modeled directly on
// runtime-spec's LinuxDevice.
type deviceEntry struct {
	specs.LinuxDevice
}

// symlinkEntry is one row of the device-symlink table.
type symlinkEntry struct {
	LinkTarget string
	LinkPath   string
}

func u32(v uint32) *uint32 { return &v }
func fm(v os.FileMode) *os.FileMode { return &v }

// hostStageMounts is applied, in order, under new_root_path before the
// child is spawned, and unstaged in reverse order once the child's
// mount namespace has captured a copy.
var hostStageMounts = []mountEntry{
	{
		Mount: specs.Mount{
			Destination: "/dev",
			Source:      "/dev",
			Type:        "bind",
			Options:     []string{"bind", "rec"},
		},
		DirPerm: 0o755,
	},
	{
		Mount: specs.Mount{
			Destination: "/dev/pts",
			Source:      "devpts",
			Type:        "devpts",
			Options:     []string{"nosuid", "noexec", "newinstance", "ptmxmode=0666", "mode=0620"},
		},
		DirPerm: 0o755,
	},
	{
		Mount: specs.Mount{
			Destination: "/dev/shm",
			Source:      "shm",
			Type:        "tmpfs",
			Options:     []string{"nosuid", "nodev", "mode=1777", "size=65536k"},
		},
		DirPerm: 0o1777,
	},
}

// containerMounts is applied, in order, inside the container's mount
// namespace after pivot_root succeeds.
var containerMounts = []mountEntry{
	{
		Mount: specs.Mount{
			Destination: "/proc",
			Source:      "proc",
			Type:        "proc",
		},
		DirPerm: 0o555,
	},
	{
		Mount: specs.Mount{
			Destination: "/sys",
			Source:      "sysfs",
			Type:        "sysfs",
			Options:     []string{"nosuid", "noexec", "nodev", "ro"},
		},
		DirPerm: 0o555,
	},
}

// hostDeviceNodes is created under new_root_path on the host side,
// before the child runs, so they are visible the moment its mount
// namespace (cloned at spawn) captures the tree.
var hostDeviceNodes = []deviceEntry{
	{LinuxDevice: specs.LinuxDevice{Path: "/dev/null", Type: "c", Major: 1, Minor: 3, FileMode: fm(0o666)}},
	{LinuxDevice: specs.LinuxDevice{Path: "/dev/zero", Type: "c", Major: 1, Minor: 5, FileMode: fm(0o666)}},
	{LinuxDevice: specs.LinuxDevice{Path: "/dev/full", Type: "c", Major: 1, Minor: 7, FileMode: fm(0o666)}},
	{LinuxDevice: specs.LinuxDevice{Path: "/dev/tty", Type: "c", Major: 5, Minor: 0, FileMode: fm(0o666)}},
	{LinuxDevice: specs.LinuxDevice{Path: "/dev/random", Type: "c", Major: 1, Minor: 8, FileMode: fm(0o666)}},
	{LinuxDevice: specs.LinuxDevice{Path: "/dev/urandom", Type: "c", Major: 1, Minor: 9, FileMode: fm(0o666)}},
}

// deviceSymlinks is created inside the container after pivot, pointing
// the conventional std{in,out,err} device paths at /proc/self/fd.
var deviceSymlinks = []symlinkEntry{
	{LinkTarget: "/proc/self/fd", LinkPath: "/dev/fd"},
	{LinkTarget: "/proc/self/fd/0", LinkPath: "/dev/stdin"},
	{LinkTarget: "/proc/self/fd/1", LinkPath: "/dev/stdout"},
	{LinkTarget: "/proc/self/fd/2", LinkPath: "/dev/stderr"},
}

// mountOptionFlags maps the subset of OCI mount option strings the
// tables above use to their unix.MS_* flag. Anything not found here is
// passed through as a comma-joined data string (e.g. devpts/tmpfs
// key=value options).
var mountOptionFlags = map[string]uintptr{
	"bind":     unix.MS_BIND,
	"rbind":    unix.MS_BIND | unix.MS_REC,
	"rec":      unix.MS_REC,
	"ro":       unix.MS_RDONLY,
	"nosuid":   unix.MS_NOSUID,
	"noexec":   unix.MS_NOEXEC,
	"nodev":    unix.MS_NODEV,
	"private":  unix.MS_PRIVATE,
	"rprivate": unix.MS_PRIVATE | unix.MS_REC,
	"slave":    unix.MS_SLAVE,
	"rslave":   unix.MS_SLAVE | unix.MS_REC,
}

// flagsAndData splits an OCI Options list into a unix.Mount flags
// bitset and a leftover comma-joined data string, the way runc's
// mount-option table translation does.
func flagsAndData(options []string) (uintptr, string) {
	var flags uintptr
	var data []byte
	for _, opt := range options {
		if f, ok := mountOptionFlags[opt]; ok {
			flags |= f
			continue
		}
		if len(data) > 0 {
			data = append(data, ',')
		}
		data = append(data, opt...)
	}
	return flags, string(data)
}
