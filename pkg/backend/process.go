package backend

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// ProcessKind names the spawn strategy behind a Process.
type ProcessKind string

const (
	// KindDirectChild is a process owned by the bridge. It must be reaped
	// after it is killed.
	KindDirectChild ProcessKind = "direct_child"

	// KindManagedSidecar is a process whose exit is observed by a runtime
	// goroutine. Killing it is enough.
	KindManagedSidecar ProcessKind = "managed_sidecar"
)

// Process is a handle on a running backend.
type Process interface {
	Kind() ProcessKind
	Pid() int
	Kill() error
}

// Waiter is implemented by processes that must be reaped after Kill.
type Waiter interface {
	Wait() error
}

// DirectChild is a backend spawned as a plain child process that inherits the
// bridge's standard streams.
type DirectChild struct {
	cmd *exec.Cmd
}

// Kind implements Process.
func (p *DirectChild) Kind() ProcessKind { return KindDirectChild }

// Pid implements Process.
func (p *DirectChild) Pid() int { return p.cmd.Process.Pid }

// Kill implements Process.
func (p *DirectChild) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Wait reaps the process. The exit status of a killed process is not an
// error.
func (p *DirectChild) Wait() error {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// ManagedSidecar is a backend whose output is relayed into the bridge's log
// and whose exit is collected by a runtime goroutine.
type ManagedSidecar struct {
	cmd    *exec.Cmd
	logger *slog.Logger

	done    chan struct{}
	exitErr error
}

func startSidecar(cmd *exec.Cmd, logger *slog.Logger) (*ManagedSidecar, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &ManagedSidecar{
		cmd:    cmd,
		logger: logger.With("pid", cmd.Process.Pid),
		done:   make(chan struct{}),
	}
	go p.run(stdout, stderr)
	return p, nil
}

// run drains both pipes, then reaps the process. Pipes must be fully read
// before Wait is called.
func (p *ManagedSidecar) run(stdout, stderr io.Reader) {
	var wg sync.WaitGroup
	wg.Add(2)
	go p.relay(&wg, stdout, "stdout", slog.LevelInfo)
	go p.relay(&wg, stderr, "stderr", slog.LevelWarn)
	wg.Wait()

	p.exitErr = p.cmd.Wait()
	p.logger.Info("backend sidecar exited", "error", p.exitErr)
	close(p.done)
}

func (p *ManagedSidecar) relay(wg *sync.WaitGroup, r io.Reader, stream string, level slog.Level) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.logger.Log(context.Background(), level, scanner.Text(), "stream", stream)
	}
}

// Kind implements Process.
func (p *ManagedSidecar) Kind() ProcessKind { return KindManagedSidecar }

// Pid implements Process.
func (p *ManagedSidecar) Pid() int { return p.cmd.Process.Pid }

// Kill implements Process.
func (p *ManagedSidecar) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Done is closed once the sidecar has exited and been reaped.
func (p *ManagedSidecar) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns the result of the sidecar's Wait. Only valid after Done.
func (p *ManagedSidecar) ExitErr() error {
	<-p.done
	return p.exitErr
}
