//go:build darwin

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const darwinSharedLibraryName = "libonnxruntime.dylib"

func resolveORTSharedLibraryPath(libPath string) (string, error) {
	candidates := make([]string, 0, 3)

	// Prefer a project-local dylib when running from source.
	candidates = append(candidates, darwinSharedLibraryName)

	// Then the dylib next to the executable.
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), darwinSharedLibraryName))
	}

	// An explicit caller path is tried last.
	if libPath != "" {
		candidates = append(candidates, libPath)
	}

	found, checked := firstExistingFile(candidates)
	if found == "" {
		return "", fmt.Errorf("cannot find %s, checked: %s",
			darwinSharedLibraryName, strings.Join(checked, ", "))
	}
	return found, nil
}

func configureORTSearchPath(libDir string) {
	prependPathEnv("DYLD_LIBRARY_PATH", libDir)
}
