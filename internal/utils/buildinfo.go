// Package utils holds process-wide helpers: logging setup, version discovery
// and shared constants.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
	gitExecutable      = "git"
)

// gitDescribeAttempts are tried in order; the first non-empty answer wins.
var gitDescribeAttempts = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// GetApplicationVersion reports the module version from build info, falling
// back to git describe when running from a source checkout.
func GetApplicationVersion() string {
	if buildInfo, available := debug.ReadBuildInfo(); available {
		if version := buildInfo.Main.Version; version != "" && version != developmentVersion {
			return version
		}
	}
	repositoryRoot, err := findGitDirectory(".")
	if err != nil {
		return unknownVersion
	}
	for _, arguments := range gitDescribeAttempts {
		if described := describeRepository(repositoryRoot, arguments); described != "" {
			return described
		}
	}
	return unknownVersion
}

func describeRepository(repositoryRoot string, arguments []string) string {
	// #nosec G204
	command := exec.Command(gitExecutable, arguments...)
	command.Dir = repositoryRoot
	described, err := command.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(described))
}

// findGitDirectory walks upward from startDirectory to the first directory
// containing .git.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, err := filepath.Abs(startDirectory)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, err)
	}
	for currentDirectory := absoluteStartDirectory; ; {
		if info, statErr := os.Stat(filepath.Join(currentDirectory, GitDirectoryName)); statErr == nil && info.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf(".git directory not found in or above %s", absoluteStartDirectory)
		}
		currentDirectory = parentDirectory
	}
}
