package pathutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestJoin is a function.
func TestJoin(t *testing.T) {
	joined, err := Join("/home/user", "rel")
	assert.NoError(t, err)
	assert.Equal(t, "/home/user/rel", joined)

	_, err = Join("/home/user", "")
	assert.Error(t, err)

	_, err = Join("/home/user", strings.Repeat("a", 2000))
	assert.Error(t, err)
}

// TestResolveAbsoluteAndRelative is a function.
func TestResolveAbsoluteAndRelative(t *testing.T) {
	resolved, err := Resolve("/bin/sh", "")
	assert.NoError(t, err)
	assert.Equal(t, "/bin/sh", resolved)

	_, err = Resolve("", "/usr/bin")
	assert.Error(t, err)
}

// TestResolveSearchesPATH is a function.
func TestResolveSearchesPATH(t *testing.T) {
	resolved, err := Resolve("sh", "/nonexistent:/bin:/usr/bin")
	if err != nil {
		t.Skip("sh not found on /bin or /usr/bin in this environment")
	}
	assert.Contains(t, resolved, "sh")
}
