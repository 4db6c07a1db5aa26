package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary
// directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveWorkspacePath determines the actual workspace path based on safety
// rules. If forceTemp is set, the path is re-rooted into a temporary
// directory so dev runs never write into the user's real workspace.
func ResolveWorkspacePath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	// A path already inside the system temp directory is trusted as is
	// (e.g. created by t.TempDir() or explicit intent).
	cleanUserPath := filepath.Clean(userPath)
	tempRoot := os.TempDir()

	rel, err := filepath.Rel(tempRoot, cleanUserPath)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return cleanUserPath
	}

	// Otherwise re-root under a namespaced dev directory, keyed by the
	// base name only so traversal segments never escape it.
	baseTemp := filepath.Join(os.TempDir(), "cellar-dev")
	var subName string

	if userPath == "" || userPath == "." || userPath == "./" {
		subName = "default"
	} else {
		subName = filepath.Base(userPath)
		if subName == "." || subName == string(os.PathSeparator) {
			subName = "default"
		}
	}

	return filepath.Join(baseTemp, subName)
}
