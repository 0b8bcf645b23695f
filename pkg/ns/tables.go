// Package ns holds the namespace name/flag tables and mount-flag token
// table, and performs joining of pre-existing namespaces via setns.
package ns

import (
	"github.com/samber/lo"
	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// Name is one of the six recognized namespace names.
type Name string

const (
	Mount Name = "mount"
	UTS   Name = "uts"
	IPC   Name = "ipc"
	Net   Name = "net"
	PID   Name = "pid"
	User  Name = "user"
)

// cloneFlags maps a namespace name to the CLONE_NEW* flag used both to
// request its creation at clone time and as the nstype argument to setns.
var cloneFlags = map[Name]int{
	Mount: unix.CLONE_NEWNS,
	UTS:   unix.CLONE_NEWUTS,
	IPC:   unix.CLONE_NEWIPC,
	Net:   unix.CLONE_NEWNET,
	PID:   unix.CLONE_NEWPID,
	User:  unix.CLONE_NEWUSER,
}

// FlagFor returns the CLONE_NEW* flag for name, and false if name is not
// one of the six recognized namespace names.
func FlagFor(name string) (int, bool) {
	flag, ok := cloneFlags[Name(name)]
	return flag, ok
}

// mountFlags maps the symbolic MS_* token names from the config schema to
// their numeric values. MS_SYNC and MS_VERBOSE have no entry here, so a
// config naming either is rejected like any other unknown token.
var mountFlags = map[string]uintptr{
	"MS_BIND":        unix.MS_BIND,
	"MS_DIRSYNC":     unix.MS_DIRSYNC,
	"MS_I_VERSION":   unix.MS_I_VERSION,
	"MS_LAZYTIME":    unix.MS_LAZYTIME,
	"MS_MANDLOCK":    unix.MS_MANDLOCK,
	"MS_MOVE":        unix.MS_MOVE,
	"MS_NOATIME":     unix.MS_NOATIME,
	"MS_NODEV":       unix.MS_NODEV,
	"MS_NODIRATIME":  unix.MS_NODIRATIME,
	"MS_NOEXEC":      unix.MS_NOEXEC,
	"MS_NOSUID":      unix.MS_NOSUID,
	"MS_PRIVATE":     unix.MS_PRIVATE,
	"MS_RDONLY":      unix.MS_RDONLY,
	"MS_REC":         unix.MS_REC,
	"MS_RELATIME":    unix.MS_RELATIME,
	"MS_REMOUNT":     unix.MS_REMOUNT,
	"MS_SHARED":      unix.MS_SHARED,
	"MS_SILENT":      unix.MS_SILENT,
	"MS_SLAVE":       unix.MS_SLAVE,
	"MS_STRICTATIME": unix.MS_STRICTATIME,
	"MS_SYNCHRONOUS": unix.MS_SYNCHRONOUS,
	"MS_UNBINDABLE":  unix.MS_UNBINDABLE,
}

// MountFlags ORs together the numeric value of each named token, failing
// fatally on any token the table does not recognize.
func MountFlags(tokens []string) (uintptr, error) {
	var flags uintptr
	for _, tok := range lo.Uniq(tokens) {
		val, ok := mountFlags[tok]
		if !ok {
			return 0, ccerr.New(ccerr.Configuration, "unknown mount flag %q (known: %v)", tok, lo.Keys(mountFlags))
		}
		flags |= val
	}
	return flags, nil
}
