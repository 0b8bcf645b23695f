package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oci-ccon/ccon/pkg/config"
)

// TestUserSpecNil is a function.
func TestUserSpecNil(t *testing.T) {
	spec := userSpec(nil)
	assert.Nil(t, spec.UID)
	assert.Nil(t, spec.GID)
}

// TestUserSpecFields is a function.
func TestUserSpecFields(t *testing.T) {
	uid, gid := 1000, 1000
	spec := userSpec(&config.User{UID: &uid, GID: &gid, AdditionalGids: []int{27}})
	assert.Equal(t, 1000, *spec.UID)
	assert.Equal(t, 1000, *spec.GID)
	assert.Equal(t, []int{27}, spec.AdditionalGids)
}

// TestApplyMountsNoMountNamespace is a function.
func TestApplyMountsNoMountNamespace(t *testing.T) {
	err := applyMounts(&config.Config{Namespaces: map[string]config.Namespace{}})
	assert.NoError(t, err)
}

// TestProcessExecSkipNilOrEmptyArgs is a function. It guards the boundary
// behavior ContainerMain implements just after the exec-process handshake:
// a nil process or an empty args array both mean "exit 0, don't exec".
func TestProcessExecSkipNilOrEmptyArgs(t *testing.T) {
	skip := skipExec

	assert.True(t, skip(nil))
	assert.True(t, skip(&config.Process{Args: []string{}}))
	assert.False(t, skip(&config.Process{Args: []string{"/bin/true"}}))
}
