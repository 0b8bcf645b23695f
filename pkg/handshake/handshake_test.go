package handshake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestReadLine is a function.
func TestReadLine(t *testing.T) {
	type scenario struct {
		input string
		test  func(string, error)
	}

	scenarios := []scenario{
		{
			SetupComplete,
			func(line string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, SetupComplete, line)
			},
		},
		{
			"no newline",
			func(line string, err error) {
				assert.Error(t, err)
			},
		},
		{
			strings.Repeat("a", MaxLine+1) + "\n",
			func(line string, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, s := range scenarios {
		line, err := ReadLine(strings.NewReader(s.input))
		s.test(line, err)
	}
}

// TestExpect is a function.
func TestExpect(t *testing.T) {
	assert.NoError(t, Expect(strings.NewReader(ExecProcess), ExecProcess))
	assert.Error(t, Expect(strings.NewReader("garbage\n"), ExecProcess))
}

// TestPipesRoundTrip is a function.
func TestPipesRoundTrip(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)
	defer p.ToChildWrite.Close()
	defer p.FromChildRead.Close()

	go func() {
		_ = Send(p.ToChildWrite, MappingComplete)
	}()

	line, err := ReadLine(p.ToChildRead)
	assert.NoError(t, err)
	assert.Equal(t, MappingComplete, line)
	p.ToChildRead.Close()
	p.FromChildWrite.Close()
}
