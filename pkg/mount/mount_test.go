package mount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResolve is a function.
func TestResolve(t *testing.T) {
	type scenario struct {
		rel  string
		cwd  string
		test func(string, error)
	}

	scenarios := []scenario{
		{
			"/abs/path",
			"/home/user",
			func(resolved string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "/abs/path", resolved)
			},
		},
		{
			"relative",
			"/home/user",
			func(resolved string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "/home/user/relative", resolved)
			},
		},
		{
			"",
			"/home/user",
			func(resolved string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "", resolved)
			},
		},
		{
			strings.Repeat("a", 2000),
			"/home/user",
			func(resolved string, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, s := range scenarios {
		resolved, err := Resolve(s.rel, s.cwd)
		s.test(resolved, err)
	}
}
