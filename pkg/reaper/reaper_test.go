package reaper

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestWaitChildReapsTrackedPID is a function.
func TestWaitChildReapsTrackedPID(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 3")
	assert.NoError(t, cmd.Start())

	r := New()
	r.Start()
	defer r.Stop()

	r.SetChildPID(cmd.Process.Pid)

	code, err := r.WaitChild()
	assert.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, -1, r.ChildPID())
}

// TestWaitHookReapsTrackedPID is a function.
func TestWaitHookReapsTrackedPID(t *testing.T) {
	cmd := exec.Command("true")
	assert.NoError(t, cmd.Start())

	r := New()
	r.Start()
	defer r.Stop()

	r.SetHookPID(cmd.Process.Pid)

	code, err := r.WaitHook()
	assert.NoError(t, err)
	assert.Equal(t, 0, code)
}

// TestWaitChildWithNoTrackedPID is a function.
func TestWaitChildWithNoTrackedPID(t *testing.T) {
	r := New()
	_, err := r.WaitChild()
	assert.Error(t, err)
}

// TestForwardKillSendsSIGKILL is a function.
func TestForwardKillSendsSIGKILL(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	assert.NoError(t, cmd.Start())

	r := New()
	r.Start()
	defer r.Stop()

	r.SetChildPID(cmd.Process.Pid)
	r.forwardKill()

	select {
	case <-r.childExited:
	case <-time.After(2 * time.Second):
		t.Fatal("child was not killed")
	}
}
