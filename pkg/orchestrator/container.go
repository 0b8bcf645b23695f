package orchestrator

import (
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/capability"
	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/cconlog"
	"github.com/oci-ccon/ccon/pkg/config"
	"github.com/oci-ccon/ccon/pkg/execdispatch"
	"github.com/oci-ccon/ccon/pkg/handshake"
	"github.com/oci-ccon/ccon/pkg/identity"
	"github.com/oci-ccon/ccon/pkg/mount"
	"github.com/oci-ccon/ccon/pkg/ns"
	"github.com/oci-ccon/ccon/pkg/pathutil"
)

// verboseEnv carries the host's --verbose choice across the re-exec, since
// the container-side process never parses CLI flags of its own.
const verboseEnv = "CCON_VERBOSE"

// Fixed fd numbers the host arranges via exec.Cmd.ExtraFiles, in order:
// the read end of the host->container pipe, the write end of the
// container->host pipe, and the read end of the one-shot config pipe.
const (
	fdToChildRead    = 3
	fdFromChildWrite = 4
	fdConfig         = 5
)

// ContainerMain is the entry point the re-exec'd process runs inside its
// new namespaces. It never returns on success: the final step replaces the
// process image. It never needs to close host-owned pipe ends on entry
// either: Go's os.Pipe sets FD_CLOEXEC on every fd it returns, so only the
// three fds named below (passed explicitly via exec.Cmd.ExtraFiles) cross
// the re-exec at all.
func ContainerMain() error {
	log := cconlog.New(os.Getenv(verboseEnv) == "1")

	toChild := os.NewFile(fdToChildRead, "to-child")
	fromChild := os.NewFile(fdFromChildWrite, "from-child")
	configFile := os.NewFile(fdConfig, "config")

	raw, err := io.ReadAll(configFile)
	configFile.Close()
	if err != nil {
		return ccerr.New(ccerr.Resource, "read config from parent: %v", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return err
	}

	if cfg.Process != nil && (cfg.Process.ApparmorProfile != "" || cfg.Process.SelinuxLabel != "") {
		log.WithField("apparmorProfile", cfg.Process.ApparmorProfile).
			WithField("selinuxLabel", cfg.Process.SelinuxLabel).
			Debug("LSM labels present in config but not applied")
	}

	if err := handshake.Expect(toChild, handshake.MappingComplete); err != nil {
		return err
	}

	// The host executable must be opened before any mount or pivot-root
	// changes the filesystem view out from under its path.
	hostFD := -1
	if cfg.Process != nil && cfg.Process.Host {
		fd, err := openHostExecutable(cfg.Process)
		if err != nil {
			return err
		}
		hostFD = fd
	}

	if err := joinNamespaces(cfg); err != nil {
		return err
	}

	if err := applyMounts(cfg); err != nil {
		return err
	}

	if err := handshake.Send(fromChild, handshake.SetupComplete); err != nil {
		return err
	}
	fromChild.Close()

	if err := handshake.Expect(toChild, handshake.ExecProcess); err != nil {
		return err
	}
	toChild.Close()

	if skipExec(cfg.Process) {
		return nil
	}

	if cfg.Process.Cwd != "" {
		if err := unix.Chdir(cfg.Process.Cwd); err != nil {
			return ccerr.New(ccerr.Privilege, "chdir(%q): %v", cfg.Process.Cwd, err)
		}
	}

	if err := identity.Apply(userSpec(cfg.Process.User)); err != nil {
		return err
	}

	if cfg.Process.NoNewPrivileges {
		if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
			return ccerr.New(ccerr.Privilege, "prctl(PR_SET_NO_NEW_PRIVS): %v", err)
		}
	}

	if err := applyCapabilities(cfg.Process); err != nil {
		return err
	}

	return execdispatch.Dispatch(hostFD, execdispatch.Process{
		Args: cfg.Process.Args,
		Env:  cfg.Process.Env,
		Path: cfg.Process.Path,
	}, os.Getenv("PATH"))
}

// skipExec reports whether ContainerMain returns without exec: no process,
// or a process with an empty args array.
func skipExec(p *config.Process) bool {
	return p == nil || len(p.Args) == 0
}

func joinNamespaces(cfg *config.Config) error {
	for name, entry := range cfg.Namespaces {
		if !entry.IsJoin() {
			continue
		}
		if err := ns.Join(name, entry.Path); err != nil {
			return err
		}
	}
	return nil
}

// rootfsPropagationFlags maps the config's symbolic propagation names to
// their MS_* tokens. MS_REC is always included: propagation changes must
// apply to the whole mount tree under "/" to take effect on later bind
// mounts performed under it.
var rootfsPropagationFlags = map[string]string{
	"private":    "MS_PRIVATE",
	"shared":     "MS_SHARED",
	"slave":      "MS_SLAVE",
	"unbindable": "MS_UNBINDABLE",
}

func applyMounts(cfg *config.Config) error {
	mountNS, ok := cfg.Namespaces["mount"]
	if !ok {
		return nil
	}

	if !mountNS.IsJoin() {
		if err := setRootfsPropagation(cfg); err != nil {
			return err
		}
	}

	if len(mountNS.Mounts) == 0 {
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ccerr.New(ccerr.Resource, "getcwd: %v", err)
	}

	entries := make([]mount.Entry, len(mountNS.Mounts))
	for i, m := range mountNS.Mounts {
		entries[i] = mount.Entry{Source: m.Source, Target: m.Target, Type: m.Type, Flags: m.Flags, Data: m.Data}
	}
	return mount.RunAll(entries, cwd)
}

// setRootfsPropagation applies linux.rootfsPropagation, defaulting to
// "private" when a new mount namespace was just created and the config is
// silent, matching the original family's practice of isolating mount
// propagation before any user-specified mounts run.
func setRootfsPropagation(cfg *config.Config) error {
	propagation := "private"
	if cfg.Linux != nil && cfg.Linux.RootfsPropagation != "" {
		propagation = cfg.Linux.RootfsPropagation
	}

	token, ok := rootfsPropagationFlags[propagation]
	if !ok {
		return ccerr.New(ccerr.Configuration, "unknown rootfsPropagation %q", propagation)
	}

	flags, err := ns.MountFlags([]string{token, "MS_REC"})
	if err != nil {
		return err
	}
	if err := unix.Mount("", "/", "", flags, ""); err != nil {
		return ccerr.New(ccerr.Privilege, "set rootfs propagation %q: %v", propagation, err)
	}
	return nil
}

func openHostExecutable(p *config.Process) (int, error) {
	name := p.Path
	if name == "" && len(p.Args) > 0 {
		name = p.Args[0]
	}
	resolved, err := pathutil.Resolve(name, os.Getenv("PATH"))
	if err != nil {
		return -1, err
	}
	fd, err := unix.Open(resolved, unix.O_PATH|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, ccerr.New(ccerr.Resource, "open host executable %q: %v", resolved, err)
	}
	return fd, nil
}

func userSpec(u *config.User) identity.Spec {
	if u == nil {
		return identity.Spec{}
	}
	return identity.Spec{UID: u.UID, GID: u.GID, AdditionalGids: u.AdditionalGids}
}

func applyCapabilities(p *config.Process) error {
	if len(p.Capabilities) == 0 {
		return nil
	}
	return capability.Apply(os.Getpid(), p.Capabilities)
}
