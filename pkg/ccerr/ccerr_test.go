package ccerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKindOf is a function.
func TestKindOf(t *testing.T) {
	err := New(Privilege, "setuid(%d): %v", 1000, errors.New("boom"))
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, Privilege, kind)
	assert.Contains(t, err.Error(), "privilege")

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

// TestWrapNil is a function.
func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil))
	assert.NotNil(t, Wrap(errors.New("x")))
}
