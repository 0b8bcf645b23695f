package hook

import (
	"io"
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/oci-ccon/ccon/pkg/reaper"
)

func newSilentLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("test", true)
}

// TestRunPreStartReceivesPID is a function.
func TestRunPreStartReceivesPID(t *testing.T) {
	catPath, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	r := reaper.New()
	r.Start()
	defer r.Stop()

	err = Run([]Descriptor{{Path: catPath}}, 4242, true, r, newSilentLogger())
	assert.NoError(t, err)
}

// TestRunPreStartFailureIsFatal is a function.
func TestRunPreStartFailureIsFatal(t *testing.T) {
	shPath, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	r := reaper.New()
	r.Start()
	defer r.Stop()

	err = Run([]Descriptor{{Path: shPath, Args: []string{"sh", "-c", "exit 3"}}}, 4242, true, r, newSilentLogger())
	assert.Error(t, err)
}

// TestRunResolvesExecutableFromArgsWhenPathEmpty is a function.
func TestRunResolvesExecutableFromArgsWhenPathEmpty(t *testing.T) {
	catPath, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	r := reaper.New()
	r.Start()
	defer r.Stop()

	err = Run([]Descriptor{{Args: []string{catPath}}}, 4242, true, r, newSilentLogger())
	assert.NoError(t, err)
}

// TestRunPostStopFailureIsIgnored is a function.
func TestRunPostStopFailureIsIgnored(t *testing.T) {
	shPath, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	r := reaper.New()
	r.Start()
	defer r.Stop()

	err = Run([]Descriptor{{Path: shPath, Args: []string{"sh", "-c", "exit 3"}}}, 0, false, r, newSilentLogger())
	assert.NoError(t, err)
}
