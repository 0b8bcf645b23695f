package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLookup is a function.
func TestLookup(t *testing.T) {
	type scenario struct {
		name string
		test func(bool)
	}

	scenarios := []scenario{
		{
			"CAP_SYS_ADMIN",
			func(ok bool) { assert.True(t, ok) },
		},
		{
			"CAP_NET_BIND_SERVICE",
			func(ok bool) { assert.True(t, ok) },
		},
		{
			"CAP_NOT_A_REAL_CAP",
			func(ok bool) { assert.False(t, ok) },
		},
		{
			"CAP",
			func(ok bool) { assert.False(t, ok) },
		},
	}

	for _, s := range scenarios {
		_, ok := Lookup(s.name)
		s.test(ok)
	}
}

// TestApplyNoopOnEmpty is a function.
func TestApplyNoopOnEmpty(t *testing.T) {
	assert.NoError(t, Apply(0, nil))
}
