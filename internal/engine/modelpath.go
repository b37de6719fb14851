package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveModelPath accepts the path as given, then falls back to the
// executable's directory, so a model shipped next to the binary is found
// no matter where the process was started.
func resolveModelPath(modelPath string) (string, error) {
	if modelPath == "" {
		return "", fmt.Errorf("empty model path")
	}

	candidates := make([]string, 0, 3)
	candidates = append(candidates, modelPath)

	if !filepath.IsAbs(modelPath) {
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			candidates = append(candidates, filepath.Join(exeDir, modelPath))
			candidates = append(candidates, filepath.Join(exeDir, filepath.Base(modelPath)))
		}
	}

	found, checked := firstExistingFile(candidates)
	if found == "" {
		return "", fmt.Errorf("model file not found, checked: %s", strings.Join(checked, ", "))
	}
	return found, nil
}

// firstExistingFile probes the candidates in order and returns the first
// absolute path naming a regular file, plus every unique path it tried.
func firstExistingFile(candidates []string) (string, []string) {
	checked := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		checked = append(checked, abs)
		info, err := os.Stat(abs)
		if err == nil && !info.IsDir() {
			return abs, checked
		}
	}
	return "", checked
}

// prependPathEnv puts dir at the front of a list-valued environment
// variable such as PATH or DYLD_LIBRARY_PATH.
func prependPathEnv(key, dir string) {
	if dir == "" {
		return
	}
	old := os.Getenv(key)
	if old == "" {
		setNativeEnv(key, dir)
		return
	}
	setNativeEnv(key, dir+string(os.PathListSeparator)+old)
}
