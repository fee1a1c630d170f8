package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"ragkit-hq/bridge/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Spawner starts a backend listening on port.
type Spawner interface {
	Launch(ctx context.Context, port int) (Process, error)
}

// Launcher spawns the backend according to the configured mode.
//
// Development mode runs "<interpreter> -m <module> --port N" from the source
// tree and yields a DirectChild. Production mode runs the packaged executable
// found next to the bridge binary with "--port N" and yields a ManagedSidecar.
type Launcher struct {
	cfg    config.BackendConfig
	logger *slog.Logger

	// executable locates the running binary; replaced in tests.
	executable func() (string, error)
}

// NewLauncher creates a launcher for cfg.
func NewLauncher(cfg config.BackendConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		cfg:        cfg,
		logger:     logger.With("component", "backend.launcher"),
		executable: os.Executable,
	}
}

// Command builds the command for port without starting it.
func (l *Launcher) Command(port int) (*exec.Cmd, error) {
	portArg := strconv.Itoa(port)

	switch l.cfg.Mode {
	case config.ModeDevelopment:
		cmd := exec.Command(l.cfg.Dev.Interpreter, "-m", l.cfg.Dev.Module, "--port", portArg)
		cmd.Dir = l.cfg.Dev.WorkingDir
		return cmd, nil

	case config.ModeProduction:
		path, err := l.sidecarPath()
		if err != nil {
			return nil, err
		}
		cmd := exec.Command(path, "--port", portArg)
		cmd.Dir = filepath.Dir(path)
		return cmd, nil

	default:
		return nil, fmt.Errorf("unknown launch mode %q", l.cfg.Mode)
	}
}

// program names what the configured mode runs: the interpreter in
// development, the packaged executable otherwise.
func (l *Launcher) program() string {
	if l.cfg.Mode == config.ModeDevelopment {
		return l.cfg.Dev.Interpreter
	}
	return l.cfg.Executable
}

func (l *Launcher) sidecarPath() (string, error) {
	if l.cfg.ExecutablePath != "" {
		return l.cfg.ExecutablePath, nil
	}
	self, err := l.executable()
	if err != nil {
		return "", fmt.Errorf("locate bridge executable: %w", err)
	}
	name := l.cfg.Executable
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(self), name), nil
}

// Launch starts the backend. The process is not tied to ctx; it lives until
// the shutdown sequence kills it.
func (l *Launcher) Launch(ctx context.Context, port int) (Process, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "backend.launch")
	defer span.End()
	span.SetAttributes(
		attribute.String("backend.mode", l.cfg.Mode),
		attribute.Int("backend.port", port),
	)

	cmd, err := l.Command(port)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &LaunchError{Mode: l.cfg.Mode, Command: l.program(), Cause: err}
	}

	var proc Process
	switch l.cfg.Mode {
	case config.ModeDevelopment:
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err = cmd.Start(); err == nil {
			proc = &DirectChild{cmd: cmd}
		}
	default:
		var sidecar *ManagedSidecar
		if sidecar, err = startSidecar(cmd, l.logger); err == nil {
			proc = sidecar
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "spawn failed")
		return nil, &LaunchError{Mode: l.cfg.Mode, Command: cmd.Path, Cause: err}
	}

	span.SetAttributes(attribute.Int("backend.pid", proc.Pid()))
	l.logger.Info("backend launched",
		"mode", l.cfg.Mode,
		"kind", proc.Kind(),
		"pid", proc.Pid(),
		"port", port,
		"command", cmd.String(),
	)
	return proc, nil
}
