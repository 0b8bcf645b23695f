package idmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatLine is a function.
func TestFormatLine(t *testing.T) {
	type scenario struct {
		mapping Mapping
		test    func(string)
	}

	scenarios := []scenario{
		{
			Mapping{ContainerID: 0, HostID: 1000, Size: 1},
			func(line string) {
				assert.Equal(t, "0 1000 1\n", line)
			},
		},
		{
			Mapping{ContainerID: 1, HostID: 100000, Size: 65536},
			func(line string) {
				assert.Equal(t, "1 100000 65536\n", line)
			},
		},
	}

	for _, s := range scenarios {
		s.test(s.mapping.FormatLine())
	}
}

// TestWriteRejectsDeadPeer is a function.
func TestWriteRejectsDeadPeer(t *testing.T) {
	err := Write(-1, nil, nil, nil)
	assert.Error(t, err)
}
