// Package reaper installs the host's signal handling: SIGHUP/SIGINT/SIGTERM
// forward SIGKILL to the current container pid, and SIGCHLD reaps whichever
// of the container or the current hook process exited, updating two
// process-wide cells. Go delivers signals to a runtime-managed goroutine
// rather than a true async-signal-safe handler, so the cells are
// atomic.Int64 instead of sig_atomic_t, and the reap itself runs in that
// goroutine rather than inline in a handler. The signal-handling goroutine
// is the sole reaper in the process: the host's "wait for the container to
// exit" step (spec §4.1 step 11) blocks on a channel this goroutine closes,
// rather than issuing its own competing wait4, so a given child is never
// raced over by two callers.
package reaper

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// Reaper owns the childPID/hookPID cells and the signal-handling goroutine.
type Reaper struct {
	childPID atomic.Int64
	hookPID  atomic.Int64

	childExitCode atomic.Int32
	childExited   chan struct{}
	hookExitCode  atomic.Int32
	hookExited    chan struct{}

	sigCh chan os.Signal
	done  chan struct{}
}

// New creates a Reaper with both cells set to -1 (no process tracked yet).
func New() *Reaper {
	r := &Reaper{
		sigCh: make(chan os.Signal, 8),
		done:  make(chan struct{}),
	}
	r.childPID.Store(-1)
	r.hookPID.Store(-1)
	return r
}

// SetChildPID records the container pid once clone succeeds and arms a
// fresh completion channel for WaitChild.
func (r *Reaper) SetChildPID(pid int) {
	r.childPID.Store(int64(pid))
	r.childExited = make(chan struct{})
}

// ChildPID returns the tracked container pid, or -1 if it has already been
// reaped (or never set).
func (r *Reaper) ChildPID() int { return int(r.childPID.Load()) }

// SetHookPID records the currently-running hook's pid and arms a fresh
// completion channel for WaitHook.
func (r *Reaper) SetHookPID(pid int) {
	r.hookPID.Store(int64(pid))
	r.hookExited = make(chan struct{})
}

// Start installs the signal handlers and begins processing them in a
// background goroutine. Call Stop to tear it down.
func (r *Reaper) Start() {
	signal.Notify(r.sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGCHLD)
	go r.loop()
}

// Stop stops receiving signals and terminates the background goroutine.
func (r *Reaper) Stop() {
	signal.Stop(r.sigCh)
	close(r.done)
}

func (r *Reaper) loop() {
	for {
		select {
		case <-r.done:
			return
		case sig := <-r.sigCh:
			switch sig {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM:
				r.forwardKill()
			case syscall.SIGCHLD:
				r.reapAvailable()
			}
		}
	}
}

func (r *Reaper) forwardKill() {
	pid := r.ChildPID()
	if pid > 0 {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}

// reapAvailable drains every exited child currently waitable, since a
// single SIGCHLD delivery can coalesce more than one exit.
func (r *Reaper) reapAvailable() {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}
		r.dispatchExit(pid, exitCodeOf(ws))
	}
}

func (r *Reaper) dispatchExit(pid int, code int) {
	switch int64(pid) {
	case r.childPID.Load():
		r.childPID.Store(-1)
		r.childExitCode.Store(int32(code))
		if r.childExited != nil {
			close(r.childExited)
		}
	case r.hookPID.Load():
		r.hookPID.Store(-1)
		r.hookExitCode.Store(int32(code))
		if r.hookExited != nil {
			close(r.hookExited)
		}
	}
}

func exitCodeOf(ws unix.WaitStatus) int {
	if ws.Exited() {
		return ws.ExitStatus()
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return -1
}

// WaitChild blocks until the tracked container pid has been reaped by the
// signal-handling goroutine and returns its exit code.
func (r *Reaper) WaitChild() (int, error) {
	ch := r.childExited
	if ch == nil {
		return -1, ccerr.New(ccerr.PeerDeath, "no child pid is being tracked")
	}
	<-ch
	return int(r.childExitCode.Load()), nil
}

// WaitHook blocks until the tracked hook pid has been reaped and returns
// its exit code.
func (r *Reaper) WaitHook() (int, error) {
	ch := r.hookExited
	if ch == nil {
		return -1, ccerr.New(ccerr.PeerDeath, "no hook pid is being tracked")
	}
	<-ch
	return int(r.hookExitCode.Load()), nil
}
