// Package mount performs the ordered list of mount operations a container
// config declares, including pivot_root with old-root cleanup.
package mount

import (
	"os"
	"path/filepath"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/ns"
	"github.com/oci-ccon/ccon/pkg/pathutil"
)

// Entry mirrors one element of the config's mounts array.
type Entry struct {
	Source string
	Target string
	Type   string
	Flags  []string
	Data   string
}

// PivotRootType is the special Type value that triggers pivot-root handling
// instead of a plain mount(2) call.
const PivotRootType = "pivot-root"

// RunAll resolves every Source and Target against cwd and performs each
// entry's mount (or pivot-root) in order.
func RunAll(entries []Entry, cwd string) error {
	for _, e := range entries {
		if err := runOne(e, cwd); err != nil {
			return err
		}
	}
	return nil
}

func runOne(e Entry, cwd string) error {
	source, err := Resolve(e.Source, cwd)
	if err != nil {
		return err
	}

	if e.Type == PivotRootType {
		return pivotRootRemoveOld(source)
	}

	target, err := Resolve(e.Target, cwd)
	if err != nil {
		return err
	}

	flags, err := ns.MountFlags(e.Flags)
	if err != nil {
		return err
	}

	if err := unix.Mount(source, target, e.Type, flags, e.Data); err != nil {
		return ccerr.New(ccerr.Privilege, "mount(%q -> %q, type=%q): %v", source, target, e.Type, err)
	}
	return nil
}

// Resolve joins rel against cwd unless rel is already absolute, per the
// host-working-directory-at-container-start rule.
func Resolve(rel, cwd string) (string, error) {
	if rel == "" {
		return "", nil
	}
	if filepath.IsAbs(rel) {
		if len(rel)+1 > pathutil.MaxPath {
			return "", ccerr.New(ccerr.Configuration, "path %q exceeds MAX_PATH", rel)
		}
		return rel, nil
	}
	return pathutil.Join(cwd, rel)
}

// pivotRootRemoveOld implements the six-step pivot_root(source) dance:
// create put_old under source, chdir into source, pivot_root, chdir to the
// new "/", then lazily unmount and remove put_old.
func pivotRootRemoveOld(source string) error {
	mounted, err := mountinfo.Mounted(source)
	if err != nil {
		return ccerr.New(ccerr.Resource, "check %q is a mount point: %v", source, err)
	}
	if !mounted {
		return ccerr.New(ccerr.Configuration, "pivot-root source %q is not a mount point", source)
	}

	putOld, err := os.MkdirTemp(source, "pivot-root.")
	if err != nil {
		return ccerr.New(ccerr.Resource, "mkdtemp under %q: %v", source, err)
	}

	if err := unix.Chdir(source); err != nil {
		return ccerr.New(ccerr.Privilege, "chdir(%q): %v", source, err)
	}

	if err := unix.PivotRoot(source, putOld); err != nil {
		return ccerr.New(ccerr.Privilege, "pivot_root(%q, %q): %v", source, putOld, err)
	}

	if err := unix.Chdir("/"); err != nil {
		return ccerr.New(ccerr.Privilege, "chdir(\"/\"): %v", err)
	}

	oldRoot := "/" + filepath.Base(putOld)
	if err := unix.Unmount(oldRoot, unix.MNT_DETACH); err != nil {
		return ccerr.New(ccerr.Privilege, "umount2(%q, MNT_DETACH): %v", oldRoot, err)
	}

	if err := os.Remove(oldRoot); err != nil {
		return ccerr.New(ccerr.Privilege, "rmdir(%q): %v", oldRoot, err)
	}

	return nil
}
