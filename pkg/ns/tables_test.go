package ns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFlagFor is a function.
func TestFlagFor(t *testing.T) {
	type scenario struct {
		name string
		test func(int, bool)
	}

	scenarios := []scenario{
		{
			"mount",
			func(flag int, ok bool) {
				assert.True(t, ok)
				assert.NotZero(t, flag)
			},
		},
		{
			"cgroup",
			func(flag int, ok bool) {
				assert.False(t, ok)
			},
		},
	}

	for _, s := range scenarios {
		flag, ok := FlagFor(s.name)
		s.test(flag, ok)
	}
}

// TestMountFlags is a function.
func TestMountFlags(t *testing.T) {
	type scenario struct {
		tokens []string
		test   func(uintptr, error)
	}

	scenarios := []scenario{
		{
			[]string{"MS_BIND", "MS_REC"},
			func(flags uintptr, err error) {
				assert.NoError(t, err)
				assert.NotZero(t, flags)
			},
		},
		{
			[]string{"MS_NOPE"},
			func(flags uintptr, err error) {
				assert.Error(t, err)
			},
		},
		{
			nil,
			func(flags uintptr, err error) {
				assert.NoError(t, err)
				assert.Zero(t, flags)
			},
		},
	}

	for _, s := range scenarios {
		flags, err := MountFlags(s.tokens)
		s.test(flags, err)
	}
}
