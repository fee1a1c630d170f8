//go:build windows

package backend

import (
	"context"
	"errors"
	"os/exec"
)

// SweepByName force-kills every process whose image name is name.exe.
// Finding no matching process is not an error.
func SweepByName(ctx context.Context, name string) error {
	err := exec.CommandContext(ctx, "taskkill", "/F", "/IM", name+".exe").Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 128 {
		// taskkill exits 128 when no image matched.
		return nil
	}
	return err
}
