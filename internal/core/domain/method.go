package domain

import "fmt"

// Method tags a lock acquisition with the operation requesting it.
type Method uint8

const (
	// MethodInstall installs bundles or resources.
	MethodInstall Method = iota
	// MethodUninstall removes bundles or resources.
	MethodUninstall
	// MethodResolve wires revisions into the environment.
	MethodResolve
	// MethodRefresh re-creates or re-applies revisions.
	MethodRefresh
	// MethodStart activates bundles.
	MethodStart
	// MethodStop deactivates bundles.
	MethodStop
	// MethodUpdate installs a new revision for an existing bundle.
	MethodUpdate
)

// String returns the upper-case method name.
func (m Method) String() string {
	switch m {
	case MethodInstall:
		return "INSTALL"
	case MethodUninstall:
		return "UNINSTALL"
	case MethodResolve:
		return "RESOLVE"
	case MethodRefresh:
		return "REFRESH"
	case MethodStart:
		return "START"
	case MethodStop:
		return "STOP"
	case MethodUpdate:
		return "UPDATE"
	default:
		return fmt.Sprintf("METHOD(%d)", uint8(m))
	}
}
