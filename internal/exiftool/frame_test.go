package exiftool

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestFrame(stdout, stderr string) *frameReader {
	return newFrameReader(
		bufio.NewReader(strings.NewReader(stdout)),
		bufio.NewReader(strings.NewReader(stderr)),
	)
}

func TestFrameReaderCompleteResponse(t *testing.T) {
	f := newTestFrame("2021-06-21 12:59:30\n{ready}\n", "Warning: minor\n{ready}\n")
	out, err := f.read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Stdout != "2021-06-21 12:59:30\n" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	if out.Stderr != "Warning: minor\n" {
		t.Fatalf("stderr = %q", out.Stderr)
	}
	if f.state != stateDone {
		t.Fatalf("state = %s", f.state)
	}
}

func TestFrameReaderStateTransitions(t *testing.T) {
	f := newTestFrame("a\n{ready}\n", "{ready}\n")
	want := []frameState{stateAwaitingStdout, stateAwaitingStderr, stateDone}
	got := []frameState{f.state}
	for f.state != stateDone {
		if err := f.step(); err != nil {
			t.Fatalf("step: %v", err)
		}
		if got[len(got)-1] != f.state {
			got = append(got, f.state)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v", got, want)
		}
	}
}

func TestFrameReaderLeavesNextResponseBuffered(t *testing.T) {
	stdout := bufio.NewReader(strings.NewReader("one\n{ready}\ntwo\n{ready}\n"))
	stderr := bufio.NewReader(strings.NewReader("{ready}\n{ready}\n"))

	first, err := newFrameReader(stdout, stderr).read()
	if err != nil || first.Stdout != "one\n" {
		t.Fatalf("first = %q, %v", first.Stdout, err)
	}
	second, err := newFrameReader(stdout, stderr).read()
	if err != nil || second.Stdout != "two\n" {
		t.Fatalf("second = %q, %v", second.Stdout, err)
	}
}

func TestFrameReaderAcceptsCRLF(t *testing.T) {
	out, err := newTestFrame("x\r\n{ready}\r\n", "{ready}\r\n").read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Stdout != "x\r\n" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
}

func TestFrameReaderUnexpectedEOF(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
		stderr string
	}{
		{name: "empty stdout", stdout: "", stderr: "{ready}\n"},
		{name: "stdout without sentinel", stdout: "partial", stderr: "{ready}\n"},
		{name: "stderr closed", stdout: "{ready}\n", stderr: "Error: boom\n"},
		{name: "sentinel without newline", stdout: "{ready}", stderr: "{ready}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTestFrame(tc.stdout, tc.stderr)
			_, err := f.read()
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Fatalf("expected unexpected EOF, got %v", err)
			}
			if f.state != stateUnexpectedEOF {
				t.Fatalf("state = %s", f.state)
			}
		})
	}
}
