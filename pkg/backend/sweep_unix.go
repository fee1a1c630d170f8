//go:build !windows

package backend

import (
	"context"
	"errors"
	"os/exec"
)

// SweepByName kills every process whose name is exactly name. Finding no
// matching process is not an error.
func SweepByName(ctx context.Context, name string) error {
	err := exec.CommandContext(ctx, "pkill", "-x", name).Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		// pkill exits 1 when nothing matched.
		return nil
	}
	return err
}
