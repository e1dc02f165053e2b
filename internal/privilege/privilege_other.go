//go:build !windows

// Package privilege reports whether the current process runs elevated.
package privilege

import "os"

// IsAdministrator reports whether the process runs as root.
func IsAdministrator() bool {
	return os.Geteuid() == 0
}
