package exiftool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"datefixer/internal/logging"
	"datefixer/internal/services"
)

const (
	// DefaultBinary is resolved through PATH.
	DefaultBinary = "exiftool"

	defaultExitGrace    = 250 * time.Millisecond
	defaultCloseTimeout = 10 * time.Second
)

// Executor runs one exiftool command and returns its framed output.
type Executor interface {
	Execute(ctx context.Context, args ...string) (Output, error)
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithBinary overrides the exiftool executable.
func WithBinary(binary string) Option {
	return func(s *Supervisor) {
		if strings.TrimSpace(binary) != "" {
			s.binary = binary
		}
	}
}

// WithLogger attaches a logger for spawn and exit events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExitGrace bounds how long a failed call waits to learn whether the
// child exited.
func WithExitGrace(d time.Duration) Option {
	return func(s *Supervisor) {
		if d >= 0 {
			s.exitGrace = d
		}
	}
}

// Supervisor owns at most one exiftool child in batch mode.
type Supervisor struct {
	binary    string
	logger    *slog.Logger
	exitGrace time.Duration

	proc   *process
	spawns int
}

// NewSupervisor returns a supervisor. No process is started until the first
// Execute call.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		binary:    DefaultBinary,
		logger:    logging.NewNop(),
		exitGrace: defaultExitGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute sends one command and waits for its complete response.
//
// A child found dead before the command is written is replaced first. A
// child killed moments before the call may not have been reaped yet; the
// command then goes to the dying process and fails with a transport error,
// and the next call spawns a replacement. Failed commands are never retried
// here.
func (s *Supervisor) Execute(ctx context.Context, args ...string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	for _, arg := range args {
		if strings.ContainsAny(arg, "\r\n") {
			return Output{}, services.Wrap(services.ErrValidation, "exiftool", "execute",
				fmt.Sprintf("argument %q contains a line break", arg), nil)
		}
	}

	if s.proc != nil && s.proc.hasExited() {
		s.discard("child exited between commands")
	}
	if s.proc == nil {
		proc, err := startProcess(s.binary)
		if err != nil {
			return Output{}, services.Wrap(services.ErrTransport, "exiftool", "spawn", s.binary, err)
		}
		s.proc = proc
		s.spawns++
		s.logger.Debug("exiftool started",
			logging.String("binary", s.binary),
			logging.Int("pid", proc.pid()),
			logging.Int("spawns", s.spawns),
		)
	}

	out, err := s.proc.roundTrip(args)
	if err != nil {
		if s.proc.waitExited(s.exitGrace) {
			s.discard("child exited during command")
		} else {
			s.logger.Debug("exiftool call failed; child still running",
				logging.Int("pid", s.proc.pid()),
				logging.Error(err),
			)
		}
		return Output{}, services.Wrap(services.ErrTransport, "exiftool", "execute", "", err)
	}
	return out, nil
}

// Alive reports whether a child is cached and has not exited.
func (s *Supervisor) Alive() bool {
	return s.proc != nil && !s.proc.hasExited()
}

// PID of the cached child, or 0.
func (s *Supervisor) PID() int {
	if s.proc == nil {
		return 0
	}
	return s.proc.pid()
}

// Spawns counts children started over the supervisor's lifetime.
func (s *Supervisor) Spawns() int {
	return s.spawns
}

// Close asks the child to leave batch mode and waits for it to exit. A
// child that ignores the request is killed after a timeout.
func (s *Supervisor) Close() error {
	if s.proc == nil {
		return nil
	}
	proc := s.proc
	s.proc = nil
	return proc.shutdown(defaultCloseTimeout)
}

func (s *Supervisor) discard(reason string) {
	s.logger.Debug("discarding exiftool process",
		logging.Int("pid", s.proc.pid()),
		logging.String("reason", reason),
		logging.Error(s.proc.exitErr()),
	)
	s.proc.release()
	s.proc = nil
}

type process struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdoutR *os.File
	stderrR *os.File
	stdout  *bufio.Reader
	stderr  *bufio.Reader

	exited  chan struct{}
	waitErr error
}

func startProcess(binary string) (*process, error) {
	cmd := exec.Command(binary, "-stay_open", "True", "-@", "-")
	tieLifetimeToParent(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	// Own the read ends so Wait never closes them under a pending read.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		return nil, err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		closeAll(stdoutR, stdoutW)
		return nil, err
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	runtime.LockOSThread()
	err = cmd.Start()
	runtime.UnlockOSThread()
	if err != nil {
		_ = stdin.Close()
		closeAll(stdoutR, stdoutW, stderrR, stderrW)
		return nil, err
	}
	closeAll(stdoutW, stderrW)

	p := &process{
		cmd:     cmd,
		stdin:   stdin,
		stdoutR: stdoutR,
		stderrR: stderrR,
		stdout:  bufio.NewReader(stdoutR),
		stderr:  bufio.NewReader(newSpool(stderrR)),
		exited:  make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

func (p *process) roundTrip(args []string) (Output, error) {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg)
		b.WriteByte('\n')
	}
	b.WriteString("-echo4\n")
	b.WriteString(readySentinel)
	b.WriteString("\n-execute\n")
	if _, err := io.WriteString(p.stdin, b.String()); err != nil {
		return Output{}, fmt.Errorf("write command: %w", err)
	}
	return newFrameReader(p.stdout, p.stderr).read()
}

func (p *process) pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *process) hasExited() bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

// waitExited waits up to grace for the child to be reaped. A closed stream
// usually precedes the reap by a few milliseconds.
func (p *process) waitExited(grace time.Duration) bool {
	if p.hasExited() {
		return true
	}
	if grace <= 0 {
		return false
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.exited:
		return true
	case <-timer.C:
		return false
	}
}

func (p *process) exitErr() error {
	if !p.hasExited() {
		return nil
	}
	return p.waitErr
}

func (p *process) shutdown(timeout time.Duration) error {
	_, writeErr := io.WriteString(p.stdin, "-stay_open\nFalse\n")
	_ = p.stdin.Close()

	var err error
	if !p.waitExited(timeout) {
		_ = p.cmd.Process.Kill()
		<-p.exited
		err = fmt.Errorf("exiftool did not exit within %s", timeout)
	} else if p.waitErr != nil && writeErr == nil {
		err = p.waitErr
	}
	closeAll(p.stdoutR, p.stderrR)
	if err != nil {
		return services.Wrap(services.ErrTransport, "exiftool", "close", "", err)
	}
	return nil
}

// release drops an exited child's remaining handles.
func (p *process) release() {
	_ = p.stdin.Close()
	closeAll(p.stdoutR, p.stderrR)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// IsTransport reports whether err came from the process boundary rather than
// from exiftool's own verdict.
func IsTransport(err error) bool {
	return errors.Is(err, services.ErrTransport)
}
