// Package execdispatch chooses between host-path exec (by a pre-opened fd)
// and in-container exec (by name or absolute path with PATH search), and
// performs the final exec syscall.
package execdispatch

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/pathutil"
)

// Process is the subset of the process descriptor the dispatcher needs.
type Process struct {
	Args []string
	Env  []string
	Path string // optional explicit executable path
}

// argv builds the NUL-terminated-at-the-syscall-boundary argument vector;
// internally it is just the ordered string slice already on Process.
func (p Process) argv() []string {
	return p.Args
}

func (p Process) env() []string {
	if len(p.Env) > 0 {
		return p.Env
	}
	return os.Environ()
}

// ExecByFD execs the file referenced by fd with an empty path and
// AT_EMPTY_PATH, for the host.{} case where the binary was opened before
// the mount view changed.
func ExecByFD(fd int, p Process) error {
	if err := unix.Fexecve(fd, p.argv(), p.env()); err != nil {
		return ccerr.New(ccerr.Privilege, "fexecve(fd=%d): %v", fd, err)
	}
	return nil
}

// ExecByPATH resolves p.Path (if set) or p.Args[0] against pathEnv and
// execs it, replacing the current process image. On success this never
// returns.
func ExecByPATH(p Process, pathEnv string) error {
	if len(p.Args) == 0 {
		return ccerr.New(ccerr.Configuration, "empty args")
	}

	name := p.Path
	if name == "" {
		name = p.Args[0]
	}

	resolved, err := pathutil.Resolve(name, pathEnv)
	if err != nil {
		return err
	}

	if err := unix.Exec(resolved, p.argv(), p.env()); err != nil {
		return ccerr.New(ccerr.Privilege, "exec(%q): %v", resolved, err)
	}
	return nil
}

// Dispatch picks ExecByFD when hostFD >= 0, else ExecByPATH.
func Dispatch(hostFD int, p Process, pathEnv string) error {
	if hostFD >= 0 {
		return ExecByFD(hostFD, p)
	}
	return ExecByPATH(p, pathEnv)
}
