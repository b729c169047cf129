package exiftool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readySentinel terminates every response on both streams.
const readySentinel = "{ready}"

type frameState int

const (
	stateAwaitingStdout frameState = iota
	stateAwaitingStderr
	stateDone
	stateUnexpectedEOF
)

func (s frameState) String() string {
	switch s {
	case stateAwaitingStdout:
		return "awaiting_stdout"
	case stateAwaitingStderr:
		return "awaiting_stderr"
	case stateDone:
		return "done"
	case stateUnexpectedEOF:
		return "unexpected_eof"
	default:
		return fmt.Sprintf("frameState(%d)", int(s))
	}
}

// Output is the text one command produced on each stream, without the
// sentinel lines.
type Output struct {
	Stdout string
	Stderr string
}

// frameReader collects one response: stdout up to its sentinel, then stderr
// up to its sentinel.
type frameReader struct {
	stdout *bufio.Reader
	stderr *bufio.Reader
	state  frameState
	out    strings.Builder
	errOut strings.Builder
}

func newFrameReader(stdout, stderr *bufio.Reader) *frameReader {
	return &frameReader{stdout: stdout, stderr: stderr, state: stateAwaitingStdout}
}

// step consumes one line from the stream the current state waits on.
func (f *frameReader) step() error {
	var (
		src *bufio.Reader
		dst *strings.Builder
	)
	switch f.state {
	case stateAwaitingStdout:
		src, dst = f.stdout, &f.out
	case stateAwaitingStderr:
		src, dst = f.stderr, &f.errOut
	default:
		return nil
	}

	line, err := src.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			stream := "stdout"
			if f.state == stateAwaitingStderr {
				stream = "stderr"
			}
			f.state = stateUnexpectedEOF
			return fmt.Errorf("%s closed before %s: %w", stream, readySentinel, io.ErrUnexpectedEOF)
		}
		return err
	}

	if strings.TrimRight(line, "\r\n") == readySentinel {
		if f.state == stateAwaitingStdout {
			f.state = stateAwaitingStderr
		} else {
			f.state = stateDone
		}
		return nil
	}
	dst.WriteString(line)
	return nil
}

// read drives the state machine until the response is complete or fails.
func (f *frameReader) read() (Output, error) {
	for f.state != stateDone {
		if err := f.step(); err != nil {
			return Output{}, err
		}
	}
	return Output{Stdout: f.out.String(), Stderr: f.errOut.String()}, nil
}
