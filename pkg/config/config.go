// Package config decodes the container configuration JSON document and
// validates the one thing the core is responsible for: the version prefix.
// Everything else about JSON schema validation is deliberately out of
// scope; unknown keys are ignored.
package config

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// acceptedVersionPrefixes are the only version prefixes this core accepts.
var acceptedVersionPrefixes = []string{"0.1.0", "0.2.0"}

// Config is the immutable tree parsed from the container's JSON document.
type Config struct {
	Version    string               `json:"version"`
	Namespaces map[string]Namespace `json:"namespaces"`
	Hooks      Hooks                `json:"hooks"`
	Process    *Process             `json:"process"`
	Linux      *Linux               `json:"linux"`
}

// Linux carries the supplemental, non-core fields described in
// SPEC_FULL.md §3 that the distilled schema omitted.
type Linux struct {
	RootfsPropagation string `json:"rootfsPropagation"`
}

// Namespace describes one entry of the top-level "namespaces" map. A zero
// Path means the namespace is to be created; a non-empty Path means it is
// to be joined.
type Namespace struct {
	Path string `json:"path"`

	// Only meaningful under "user".
	UIDMappings []IDMapping `json:"uidMappings"`
	GIDMappings []IDMapping `json:"gidMappings"`
	Setgroups   *bool       `json:"setgroups"`

	// Only meaningful under "mount".
	Mounts []Mount `json:"mounts"`
}

// IsJoin reports whether this namespace entry should be joined (as opposed
// to created).
func (n Namespace) IsJoin() bool { return n.Path != "" }

// IDMapping is one {containerID, hostID, size} triple.
type IDMapping struct {
	ContainerID uint32 `json:"containerID"`
	HostID      uint32 `json:"hostID"`
	Size        int64  `json:"size"`
}

// Mount is one ordered mount entry.
type Mount struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   string   `json:"type"`
	Flags  []string `json:"flags"`
	Data   string   `json:"data"`
}

// Hooks holds the pre-start and post-stop hook sequences.
type Hooks struct {
	PreStart []ProcessDescriptor `json:"pre-start"`
	PostStop []ProcessDescriptor `json:"post-stop"`
}

// ProcessDescriptor is one hook invocation.
type ProcessDescriptor struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
	Env  []string `json:"env"`
}

// Process is the optional "process" field: the final program to run inside
// the container.
type Process struct {
	Args            []string `json:"args"`
	Env             []string `json:"env"`
	Path            string   `json:"path"`
	Cwd             string   `json:"cwd"`
	Host            bool     `json:"host"`
	User            *User    `json:"user"`
	Capabilities    []string `json:"capabilities"`
	NoNewPrivileges bool     `json:"noNewPrivileges"`
	ApparmorProfile string   `json:"apparmorProfile"`
	SelinuxLabel    string   `json:"selinuxLabel"`
}

// User is process.user: identity to assume before exec.
type User struct {
	UID            *int  `json:"uid"`
	GID            *int  `json:"gid"`
	AdditionalGids []int `json:"additionalGids"`
}

// Load reads and decodes the config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ccerr.New(ccerr.Resource, "read config %q: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes raw JSON bytes into a Config and validates the version.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ccerr.New(ccerr.Configuration, "decode config: %v", err)
	}
	if err := c.checkVersion(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) checkVersion() error {
	ok := lo.SomeBy(acceptedVersionPrefixes, func(prefix string) bool {
		return len(c.Version) >= len(prefix) && c.Version[:len(prefix)] == prefix
	})
	if !ok {
		return ccerr.New(ccerr.Configuration, "unsupported version %q", c.Version)
	}
	return nil
}
