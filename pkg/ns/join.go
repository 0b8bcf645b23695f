package ns

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// Join opens path read-only and calls setns with the numeric type for name,
// entering a namespace that already exists rather than creating a new one.
func Join(name string, path string) error {
	flag, ok := FlagFor(name)
	if !ok {
		return ccerr.New(ccerr.Configuration, "unknown namespace %q", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return ccerr.New(ccerr.Resource, "open %s namespace path %q: %v", name, path, err)
	}
	defer f.Close()

	if err := unix.Setns(int(f.Fd()), flag); err != nil {
		return ccerr.New(ccerr.Privilege, "setns(%s, %q): %v", name, path, err)
	}
	return nil
}
