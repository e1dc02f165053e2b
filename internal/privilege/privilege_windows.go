//go:build windows

// Package privilege reports whether the current process runs elevated.
package privilege

import "golang.org/x/sys/windows"

// IsAdministrator reports whether the process token is elevated.
func IsAdministrator() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
