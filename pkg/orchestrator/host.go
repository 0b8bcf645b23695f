// Package orchestrator implements the two-process host/container state
// machine: clone, the parent/child handshake, hook dispatch, and the final
// reap on the host side; namespace joining, mounting, privilege drop, and
// exec on the container side.
package orchestrator

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/config"
	"github.com/oci-ccon/ccon/pkg/handshake"
	"github.com/oci-ccon/ccon/pkg/hook"
	"github.com/oci-ccon/ccon/pkg/idmap"
	"github.com/oci-ccon/ccon/pkg/reaper"
)

// containerInitArg is the hidden first argument that makes main() dispatch
// into ContainerMain instead of the CLI, the Go analogue of the clone(2)
// entry point in the original design.
const containerInitArg = "__ccon_container_init__"

// IsContainerInit reports whether args (as in os.Args) identifies a
// re-exec into the container-side entry point.
func IsContainerInit(args []string) bool {
	return len(args) > 1 && args[1] == containerInitArg
}

// Host runs the container to completion and returns the process's exit
// status. It implements spec §4.1.
func Host(cfg *config.Config, log *logrus.Entry) (int, error) {
	pipes, err := handshake.New()
	if err != nil {
		return 1, err
	}

	configRead, configWrite, err := os.Pipe()
	if err != nil {
		return 1, ccerr.New(ccerr.Resource, "pipe (config): %v", err)
	}

	self, err := os.Executable()
	if err != nil {
		return 1, ccerr.New(ccerr.Resource, "resolve self executable: %v", err)
	}

	raw, err := configBytes(cfg)
	if err != nil {
		return 1, err
	}

	cmd := exec.Command(self, containerInitArg)
	cmd.ExtraFiles = []*os.File{pipes.ToChildRead, pipes.FromChildWrite, configRead}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), verboseEnv+"="+verboseEnvValue(log))
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: cloneFlags(cfg),
		Pdeathsig:  syscall.SIGKILL,
	}

	if err := cmd.Start(); err != nil {
		return 1, ccerr.New(ccerr.Resource, "clone: %v", err)
	}

	// Hand the config to the child, then close our copy; the child reads it
	// to EOF before doing anything else.
	if _, err := configWrite.Write(raw); err != nil {
		log.WithError(err).Warn("failed writing config to child")
	}
	configWrite.Close()
	configRead.Close()

	pipes.CloseHostUnused()

	r := reaper.New()
	r.SetChildPID(cmd.Process.Pid)
	r.Start()
	defer r.Stop()

	log.WithField("pid", cmd.Process.Pid).Debug("container cloned")

	exitCode, runErr := runHandshake(cfg, pipes, r, log, cmd.Process.Pid)

	// runHandshake already closes each end right after its last use per
	// spec step 8/10; this is a defensive catch-all for any early-return
	// path above that skipped one.
	pipes.CloseAll()

	_ = hook.Run(toHookDescriptors(cfg.Hooks.PostStop), 0, false, r, log)

	if runErr != nil {
		return 1, runErr
	}
	return exitCode, nil
}

func runHandshake(cfg *config.Config, pipes *handshake.Pipes, r *reaper.Reaper, log *logrus.Entry, cpid int) (int, error) {
	if userNS, ok := cfg.Namespaces["user"]; ok && !userNS.IsJoin() {
		if err := writeIDMaps(cpid, userNS); err != nil {
			return 1, err
		}
	}

	if err := handshake.Send(pipes.ToChildWrite, handshake.MappingComplete); err != nil {
		return 1, err
	}

	if err := handshake.Expect(pipes.FromChildRead, handshake.SetupComplete); err != nil {
		return 1, err
	}
	pipes.FromChildRead.Close()
	log.Debug("container setup complete")

	hookErr := hook.Run(toHookDescriptors(cfg.Hooks.PreStart), cpid, true, r, log)
	if hookErr != nil {
		log.WithError(hookErr).Error("pre-start hook failed, killing container")
		pipes.ToChildWrite.Close()
		if pid := r.ChildPID(); pid > 0 {
			_ = syscall.Kill(pid, syscall.SIGKILL)
		}
		_, _ = r.WaitChild()
		return 1, hookErr
	}

	sendErr := handshake.Send(pipes.ToChildWrite, handshake.ExecProcess)
	pipes.ToChildWrite.Close()
	if sendErr != nil {
		return 1, sendErr
	}

	return r.WaitChild()
}

func writeIDMaps(cpid int, userNS config.Namespace) error {
	uidMappings := make([]idmap.Mapping, len(userNS.UIDMappings))
	for i, m := range userNS.UIDMappings {
		uidMappings[i] = idmap.Mapping{ContainerID: m.ContainerID, HostID: m.HostID, Size: m.Size}
	}
	gidMappings := make([]idmap.Mapping, len(userNS.GIDMappings))
	for i, m := range userNS.GIDMappings {
		gidMappings[i] = idmap.Mapping{ContainerID: m.ContainerID, HostID: m.HostID, Size: m.Size}
	}
	return idmap.Write(cpid, uidMappings, gidMappings, userNS.Setgroups)
}

func verboseEnvValue(log *logrus.Entry) string {
	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return "1"
	}
	return "0"
}

func toHookDescriptors(in []config.ProcessDescriptor) []hook.Descriptor {
	out := make([]hook.Descriptor, len(in))
	for i, d := range in {
		out[i] = hook.Descriptor{Path: d.Path, Args: d.Args, Env: d.Env}
	}
	return out
}
