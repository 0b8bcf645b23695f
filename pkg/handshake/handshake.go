// Package handshake implements the parent/child pipe line protocol: the
// three literal messages that synchronize the host and container halves of
// setup, and the bounded, one-byte-at-a-time line reader described in the
// design notes.
package handshake

import (
	"io"
	"os"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// The three defined protocol messages, each a single line terminated by
// '\n'. Any other line is a protocol error to the receiver.
const (
	MappingComplete = "user-namespace-mapping-complete\n"
	SetupComplete   = "container-setup-complete\n"
	ExecProcess     = "exec-process\n"
)

// MaxLine is the largest line the reader accepts, including the trailing
// newline.
const MaxLine = 16384

// growthBlock is how much the read buffer grows at a time, matching the
// original getline-over-fd discipline referenced in the design notes.
const growthBlock = 512

// ReadLine reads one line (including its trailing '\n') from r, one byte at
// a time, up to MaxLine bytes. It leaves r positioned at the byte after
// '\n'. EOF before a newline, or exceeding MaxLine, is a protocol error.
func ReadLine(r io.Reader) (string, error) {
	buf := make([]byte, 0, growthBlock)
	one := make([]byte, 1)

	for {
		n, err := r.Read(one)
		if n == 1 {
			buf = append(buf, one[0])
			if one[0] == '\n' {
				return string(buf), nil
			}
			if len(buf) >= MaxLine {
				return "", ccerr.New(ccerr.Protocol, "line exceeds %d bytes: %q...", MaxLine, string(buf[:64]))
			}
			continue
		}
		if err == io.EOF {
			return "", ccerr.New(ccerr.Protocol, "EOF before newline, got %q", string(buf))
		}
		if err != nil {
			return "", ccerr.New(ccerr.Protocol, "read: %v", err)
		}
	}
}

// Expect reads one line from r and fails unless it equals want exactly.
func Expect(r io.Reader, want string) error {
	got, err := ReadLine(r)
	if err != nil {
		return err
	}
	if got != want {
		return ccerr.New(ccerr.Protocol, "expected %q, got %q", want, got)
	}
	return nil
}

// Send writes msg to w in a single call.
func Send(w io.Writer, msg string) error {
	if _, err := io.WriteString(w, msg); err != nil {
		return ccerr.New(ccerr.Resource, "write %q: %v", msg, err)
	}
	return nil
}

// Pipes bundles the two anonymous pipes the host creates before clone:
// ToChild carries host -> container messages, FromChild carries
// container -> host messages. Each half is independently closeable so
// ownership transfer (close the non-owning end right after clone) is
// explicit.
type Pipes struct {
	ToChildRead    *os.File
	ToChildWrite   *os.File
	FromChildRead  *os.File
	FromChildWrite *os.File
}

// New creates both anonymous pipes.
func New() (*Pipes, error) {
	toChildRead, toChildWrite, err := os.Pipe()
	if err != nil {
		return nil, ccerr.New(ccerr.Resource, "pipe (to_child): %v", err)
	}
	fromChildRead, fromChildWrite, err := os.Pipe()
	if err != nil {
		toChildRead.Close()
		toChildWrite.Close()
		return nil, ccerr.New(ccerr.Resource, "pipe (from_child): %v", err)
	}
	return &Pipes{
		ToChildRead:    toChildRead,
		ToChildWrite:   toChildWrite,
		FromChildRead:  fromChildRead,
		FromChildWrite: fromChildWrite,
	}, nil
}

// CloseHostUnused closes the ends the host does not own after clone: the
// child's read end of to_child and the child's write end of from_child are
// retained by the host only long enough to hand them to the child process;
// the host's own working ends are ToChildWrite and FromChildRead.
func (p *Pipes) CloseHostUnused() {
	p.ToChildRead.Close()
	p.FromChildWrite.Close()
}

// CloseAll closes every fd the host still holds, for use once the
// handshake is fully done.
func (p *Pipes) CloseAll() {
	p.ToChildWrite.Close()
	p.FromChildRead.Close()
}
