package request

import "testing"

func TestNewAppliesDefaults(t *testing.T) {
	req := New([]string{"/bin/sh"}, "", "", false, false)

	if req.NewRootPath != DefaultRoot {
		t.Fatalf("expected default root %q, got %q", DefaultRoot, req.NewRootPath)
	}
	if req.Hostname != DefaultHostname {
		t.Fatalf("expected default hostname %q, got %q", DefaultHostname, req.Hostname)
	}
	if req.Namespaces != AllNamespaces {
		t.Fatalf("expected AllNamespaces, got %v", req.Namespaces)
	}
}

func TestNewPreservesExplicitValues(t *testing.T) {
	req := New([]string{"/bin/echo", "hi"}, "/srv/rootfs", "box", true, true)

	if req.NewRootPath != "/srv/rootfs" {
		t.Fatalf("expected explicit root preserved, got %q", req.NewRootPath)
	}
	if req.Hostname != "box" {
		t.Fatalf("expected explicit hostname preserved, got %q", req.Hostname)
	}
	if !req.Verbose || !req.MapToRoot {
		t.Fatalf("expected Verbose and MapToRoot to be true")
	}
	if len(req.Command) != 2 || req.Command[1] != "hi" {
		t.Fatalf("unexpected command: %v", req.Command)
	}
}

func TestNamespaceFlagHas(t *testing.T) {
	flags := NamespaceUser | NamespaceMount

	if !flags.Has(NamespaceUser) {
		t.Fatalf("expected Has(NamespaceUser) true")
	}
	if flags.Has(NamespacePID) {
		t.Fatalf("expected Has(NamespacePID) false")
	}
	if !AllNamespaces.Has(NamespaceNetwork) {
		t.Fatalf("expected AllNamespaces to include NamespaceNetwork")
	}
}
