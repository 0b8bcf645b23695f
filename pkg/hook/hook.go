// Package hook runs the pre-start and post-stop hook processes, piping the
// container pid to each hook's standard input when one is known.
package hook

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/reaper"
)

// Descriptor mirrors one element of hooks.pre-start / hooks.post-stop.
type Descriptor struct {
	Path string
	Args []string
	Env  []string
}

// Run executes every descriptor in order, writing cpid as a decimal line on
// each hook's stdin when cpid > 0 (post-stop runs with cpid == 0, meaning no
// PID on stdin). If failFast is true (pre-start), the first non-zero exit
// aborts the remaining hooks and is returned as an error; otherwise
// (post-stop) failures are logged and ignored.
func Run(hooks []Descriptor, cpid int, failFast bool, r *reaper.Reaper, log *logrus.Entry) error {
	for _, h := range hooks {
		if err := runOne(h, cpid, r, log); err != nil {
			if failFast {
				return err
			}
			log.WithError(err).Warn("hook failed, ignoring (post-stop)")
		}
	}
	return nil
}

func runOne(h Descriptor, cpid int, r *reaper.Reaper, log *logrus.Entry) error {
	var stdinRead *os.File
	var pipeWrite *os.File

	if cpid > 0 {
		var err error
		stdinRead, pipeWrite, err = os.Pipe()
		if err != nil {
			return ccerr.New(ccerr.Resource, "pipe for hook stdin: %v", err)
		}
		if _, err := pipeWrite.WriteString(fmt.Sprintf("%d\n", cpid)); err != nil {
			pipeWrite.Close()
			stdinRead.Close()
			return ccerr.New(ccerr.Resource, "write hook stdin: %v", err)
		}
		pipeWrite.Close()
		defer stdinRead.Close()
	}

	path := h.Path
	if path == "" && len(h.Args) > 0 {
		path = h.Args[0]
	}

	// Args is the hook's full argv, including argv[0].
	cmd := exec.Command(path)
	if len(h.Args) > 0 {
		cmd.Args = h.Args
	}
	if len(h.Env) > 0 {
		cmd.Env = h.Env
	} else {
		cmd.Env = os.Environ()
	}
	if stdinRead != nil {
		cmd.Stdin = stdinRead
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return ccerr.New(ccerr.Resource, "start hook %q: %v", path, err)
	}

	r.SetHookPID(cmd.Process.Pid)
	log.WithField("hook", path).WithField("pid", cmd.Process.Pid).Debug("hook started")

	code, err := r.WaitHook()
	if err != nil {
		return err
	}
	if code != 0 {
		return ccerr.New(ccerr.Privilege, "hook %q exited %d", path, code)
	}
	return nil
}
