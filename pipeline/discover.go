package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/wasm-repair/errors"
)

// ModuleExtensions are the file extensions FindInput accepts. Emscripten
// side modules are emitted as .so.
var ModuleExtensions = []string{".so", ".wasm"}

// FindInput returns the single module file in dir. Scratch and staging
// files left by earlier runs are ignored.
func FindInput(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.IO("list input directory", dir, err)
	}

	var all, found []string
	for _, e := range entries {
		all = append(all, e.Name())
		if e.IsDir() || !isModuleName(e.Name()) {
			continue
		}
		found = append(found, e.Name())
	}

	if len(found) != 1 {
		return "", errors.InvalidInput(errors.PhaseLoad, dir,
			fmt.Sprintf("want exactly one %s file, found %v (all files: %v)",
				strings.Join(ModuleExtensions, "/"), found, all))
	}
	return filepath.Join(dir, found[0]), nil
}

func isModuleName(name string) bool {
	if strings.HasSuffix(name, ScratchSuffix) || strings.HasSuffix(name, DebugInfoSuffix) {
		return false
	}
	ext := filepath.Ext(name)
	for _, want := range ModuleExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
