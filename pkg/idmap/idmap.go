// Package idmap writes the uid_map, gid_map, and setgroups files under
// /proc/<pid>/ that establish a new user namespace's id translation. It runs
// entirely on the host side, while the container blocks on the handshake.
package idmap

import (
	"fmt"
	"os"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// Mapping is one {containerID, hostID, size} triple.
type Mapping struct {
	ContainerID uint32
	HostID      uint32
	Size        int64
}

// FormatLine renders a mapping the way the kernel expects it in uid_map /
// gid_map: "%u %u %d\n".
func (m Mapping) FormatLine() string {
	return fmt.Sprintf("%d %d %d\n", m.ContainerID, m.HostID, m.Size)
}

// Write performs the ordered sequence the kernel requires: uid_map,
// setgroups, then gid_map (setgroups must land before gid_map when denying).
// setgroups is written whenever setgroupsField is non-nil; its value
// selects "allow" or "deny".
func Write(pid int, uidMappings, gidMappings []Mapping, setgroupsField *bool) error {
	if pid <= 0 {
		return ccerr.New(ccerr.PeerDeath, "cannot write id maps: child pid is %d", pid)
	}

	if err := writeMapFile(fmt.Sprintf("/proc/%d/uid_map", pid), uidMappings); err != nil {
		return err
	}

	if setgroupsField != nil {
		value := "deny"
		if *setgroupsField {
			value = "allow"
		}
		if err := writeSetgroups(pid, value); err != nil {
			return err
		}
	}

	if err := writeMapFile(fmt.Sprintf("/proc/%d/gid_map", pid), gidMappings); err != nil {
		return err
	}

	return nil
}

func writeMapFile(path string, mappings []Mapping) error {
	if len(mappings) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return ccerr.New(ccerr.Resource, "open %s: %v", path, err)
	}
	defer f.Close()

	for _, m := range mappings {
		line := m.FormatLine()
		if _, err := f.Write([]byte(line)); err != nil {
			return ccerr.New(ccerr.Privilege, "write %s %q: %v", path, line, err)
		}
	}
	return nil
}

func writeSetgroups(pid int, value string) error {
	path := fmt.Sprintf("/proc/%d/setgroups", pid)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return ccerr.New(ccerr.Resource, "open %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(value)); err != nil {
		return ccerr.New(ccerr.Privilege, "write %s %q: %v", path, value, err)
	}
	return nil
}
