package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/config"
)

// TestCloneFlagsCreateOnly is a function.
func TestCloneFlagsCreateOnly(t *testing.T) {
	cfg := &config.Config{
		Namespaces: map[string]config.Namespace{
			"mount": {},
			"uts":   {},
			"net":   {Path: "/var/run/netns/foo"},
		},
	}

	flags := cloneFlags(cfg)

	assert.NotZero(t, flags&unix.CLONE_NEWNS)
	assert.NotZero(t, flags&unix.CLONE_NEWUTS)
	assert.Zero(t, flags&unix.CLONE_NEWNET)
}

// TestCloneFlagsAlwaysIncludesSIGCHLD is a function.
func TestCloneFlagsAlwaysIncludesSIGCHLD(t *testing.T) {
	flags := cloneFlags(&config.Config{})
	assert.NotZero(t, flags&0xff)
}
