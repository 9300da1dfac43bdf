// Package request defines the immutable description of a launcher
// invocation produced by the CLI and consumed by the core components.
package request

import "golang.org/x/sys/unix"

// NamespaceFlag selects one of the five namespaces the launcher puts
// the child into. Values compose into a bitset so callers can pass a
// reduced set without threading five booleans through every layer.
type NamespaceFlag uintptr

const (
	NamespaceUser NamespaceFlag = unix.CLONE_NEWUSER
	NamespaceUTS  NamespaceFlag = unix.CLONE_NEWUTS
	NamespacePID  NamespaceFlag = unix.CLONE_NEWPID
	NamespaceMount NamespaceFlag = unix.CLONE_NEWNS
	NamespaceNetwork NamespaceFlag = unix.CLONE_NEWNET

	// AllNamespaces is the default namespace set: user, UTS, PID, mount, network.
	AllNamespaces NamespaceFlag = NamespaceUser | NamespaceUTS | NamespacePID | NamespaceMount | NamespaceNetwork
)

// DefaultRoot and DefaultHostname mirror spec.md's stated defaults.
const (
	DefaultRoot     = "rootfs"
	DefaultHostname = "daft-container"
)

// Request is the immutable, fully-resolved description of a single
// launcher invocation. It is produced once by the CLI layer (cmd.Execute)
// and never mutated afterward; every core component reads from it.
type Request struct {
	// Command is the non-empty executable + argument vector to run
	// inside the container.
	Command []string

	// NewRootPath is the path to the populated root tree that becomes
	// the container's "/".
	NewRootPath string

	// Hostname is set inside the UTS namespace before pivot.
	Hostname string

	// Verbose enables stdout narration of setup steps.
	Verbose bool

	// MapToRoot, when true, maps uid 0 inside the user namespace to the
	// caller's uid/gid outside it.
	MapToRoot bool

	// Namespaces is the bitset of namespace flags to clone.
	Namespaces NamespaceFlag
}

// New builds a Request from parsed CLI values, applying spec.md's
// defaults for any zero-valued field.
func New(command []string, rootPath, hostname string, verbose, mapToRoot bool) *Request {
	if rootPath == "" {
		rootPath = DefaultRoot
	}
	if hostname == "" {
		hostname = DefaultHostname
	}

	return &Request{
		Command:     command,
		NewRootPath: rootPath,
		Hostname:    hostname,
		Verbose:     verbose,
		MapToRoot:   mapToRoot,
		Namespaces:  AllNamespaces,
	}
}

// Has reports whether flag is part of the requested namespace set.
func (f NamespaceFlag) Has(flag NamespaceFlag) bool {
	return f&flag != 0
}
