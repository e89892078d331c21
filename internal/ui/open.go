package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// openerCommand returns the desktop command that shows dir in the file
// manager for goos.
func openerCommand(goos, dir string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{dir}
	case "windows":
		return "explorer", []string{dir}
	default:
		return "xdg-open", []string{dir}
	}
}

// OpenFolder shows dir in the platform file manager.
func OpenFolder(dir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name, args := openerCommand(runtime.GOOS, dir)
	if err := exec.CommandContext(ctx, name, args...).Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
