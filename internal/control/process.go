package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrExited is returned once the control program has terminated.
var ErrExited = errors.New("control program exited")

// maxLine bounds a single response line from a control program.
const maxLine = 1 << 20

// Process runs a control program as a child process and exchanges one JSON
// line per request over its stdin and stdout.
type Process struct {
	name    string
	timeout time.Duration
	log     *slog.Logger

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan []byte
	done  chan struct{}

	mu        sync.Mutex
	seq       uint64
	wedged    bool
	closeOnce sync.Once
	closeErr  error
}

// ParseCommand splits a team location into an executable and its arguments.
// A leading file:// scheme is stripped.
func ParseCommand(location string) ([]string, error) {
	location = strings.TrimPrefix(strings.TrimSpace(location), "file://")
	fields := strings.Fields(location)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty control program location")
	}
	return fields, nil
}

// StartProcess launches the program at location. Each Act call waits at most timeout.
func StartProcess(ctx context.Context, name, location string, timeout time.Duration, logger *slog.Logger) (*Process, error) {
	argv, err := ParseCommand(location)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin for %s: %w", name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout for %s: %w", name, err)
	}
	cmd.Stderr = &logWriter{log: logger, team: name}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start control program for %s: %w", name, err)
	}

	p := &Process{
		name:    name,
		timeout: timeout,
		log:     logger,
		cmd:     cmd,
		stdin:   stdin,
		lines:   make(chan []byte, 1),
		done:    make(chan struct{}),
	}
	go p.readLoop(stdout)

	logger.Info("Started control program", "team", name, "path", argv[0], "pid", cmd.Process.Pid)
	return p, nil
}

func (p *Process) readLoop(r io.Reader) {
	defer close(p.lines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case p.lines <- line:
		case <-p.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		p.log.Warn("Control program output unreadable", "team", p.name, "error", err)
	}
}

// Name returns the team name the program plays for.
func (p *Process) Name() string {
	return p.name
}

// Act sends one request and waits for the matching response. Both the write
// and the wait are bounded by the per-call timeout. Responses to earlier,
// timed out requests are discarded. A program that stops reading its input
// is killed and every later call returns ErrExited.
func (p *Process) Act(ctx context.Context, req Request) (Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.wedged {
		return Response{}, ErrExited
	}

	p.seq++
	req.Seq = p.seq

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.send(ctx, append(payload, '\n')); err != nil {
		return Response{}, err
	}

	for {
		select {
		case <-ctx.Done():
			return Response{}, fmt.Errorf("control program %s: %w", p.name, ctx.Err())
		case line, ok := <-p.lines:
			if !ok {
				return Response{}, ErrExited
			}
			var resp Response
			if err := json.Unmarshal(line, &resp); err != nil {
				return Response{}, fmt.Errorf("control program %s sent malformed response: %w", p.name, err)
			}
			if resp.Seq != req.Seq {
				p.log.Debug("Discarding stale control response", "team", p.name, "seq", resp.Seq, "want", req.Seq)
				continue
			}
			return resp, nil
		}
	}
}

// send writes b to the program's stdin unless ctx ends first. The pending
// write returns once the killed program's pipe is gone.
func (p *Process) send(ctx context.Context, b []byte) error {
	written := make(chan error, 1)
	go func() {
		_, err := p.stdin.Write(b)
		written <- err
	}()

	select {
	case err := <-written:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExited, err)
		}
		return nil
	case <-ctx.Done():
		p.wedged = true
		p.log.Warn("Control program stopped reading requests, killing it", "team", p.name)
		if err := p.cmd.Process.Kill(); err != nil {
			p.log.Debug("Kill failed", "team", p.name, "error", err)
		}
		return fmt.Errorf("control program %s: %w", p.name, ctx.Err())
	}
}

// Close ends the program's input and waits for it to exit.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.stdin.Close()
		exited := make(chan error, 1)
		go func() { exited <- p.cmd.Wait() }()

		select {
		case p.closeErr = <-exited:
		case <-time.After(2 * time.Second):
			_ = p.cmd.Process.Kill()
			p.closeErr = <-exited
		}
	})
	return p.closeErr
}

// logWriter forwards a program's stderr into the harness log.
type logWriter struct {
	log  *slog.Logger
	team string
}

func (w *logWriter) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		if line != "" {
			w.log.Debug("control program stderr", "team", w.team, "line", line)
		}
	}
	return len(b), nil
}
