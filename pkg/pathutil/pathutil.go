// Package pathutil resolves executable names against a PATH-like list and
// joins paths under a fixed maximum length, matching the C original's fixed
// MAX_PATH buffer discipline so behavior stays compatible at the boundary.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// MaxPath is the largest path accepted anywhere in the runtime, inclusive of
// the terminating NUL a C implementation would require. Go strings are not
// NUL-terminated, but the length ceiling is kept for wire/on-disk
// compatibility with the original runtime family.
const MaxPath = 1024

// Join concatenates base and rel with a separating "/", rejecting the
// result if it would exceed MaxPath-1 bytes (reserving one byte for the NUL
// a C caller would still need). rel is returned unchanged if it is already
// absolute.
func Join(base, rel string) (string, error) {
	if rel == "" {
		return "", ccerr.New(ccerr.Configuration, "empty path component")
	}
	if filepath.IsAbs(rel) {
		return checkLength(rel)
	}
	joined := base + "/" + rel
	return checkLength(joined)
}

func checkLength(p string) (string, error) {
	if len(p)+1 > MaxPath {
		return "", ccerr.New(ccerr.Configuration, "path %q exceeds MAX_PATH (%d)", p, MaxPath)
	}
	return p, nil
}

// Resolve finds name on the host filesystem the way a shell would:
//   - an absolute path is returned as-is (existence is checked by the
//     eventual open/exec, not here)
//   - a name containing "/" is resolved relative to the current working
//     directory
//   - a bare name is searched for in each directory of pathEnv (a PATH-style
//     colon-separated list), returning the first entry that exists and is
//     not a directory; permission bits are not checked
func Resolve(name string, pathEnv string) (string, error) {
	if name == "" {
		return "", ccerr.New(ccerr.Configuration, "empty executable name")
	}
	if filepath.IsAbs(name) {
		return checkLength(name)
	}
	if strings.Contains(name, "/") {
		cwd, err := os.Getwd()
		if err != nil {
			return "", ccerr.New(ccerr.Resource, "getcwd: %v", err)
		}
		return Join(cwd, name)
	}

	for _, dir := range strings.Split(pathEnv, ":") {
		if dir == "" {
			continue
		}
		candidate, err := Join(dir, name)
		if err != nil {
			continue
		}
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", ccerr.New(ccerr.Configuration, "%q not found in PATH", name)
}
