package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// ResolveBinary returns the path used to launch executable. Relative
// paths are resolved against dir; bare names without a separator are
// left for PATH lookup.
func ResolveBinary(dir, executable string) string {
	if filepath.IsAbs(executable) || dir == "" {
		return executable
	}

	if filepath.Base(executable) == executable {
		return executable
	}

	return filepath.Join(dir, executable)
}

// Build runs the configured build command (for example "make all")
// in dir before any benchmark is collected. Build output goes to stderr.
func Build(
	ctx context.Context,
	logger *slog.Logger,
	dir string,
	command []string,
) error {
	if len(command) == 0 {
		return nil
	}

	logger.InfoContext(ctx, "building benchmarks",
		slog.String("dir", dir),
		slog.Any("command", command),
	)

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %v in %s: %w", command, dir, err)
	}

	logger.InfoContext(ctx, "benchmarks built", slog.String("dir", dir))

	return nil
}

// CheckBinary reports an error if path does not name an executable file.
// Bare names are searched in PATH.
func CheckBinary(path string) error {
	if filepath.Base(path) == path {
		if _, err := exec.LookPath(path); err != nil {
			return fmt.Errorf("binary %s: %w", path, err)
		}

		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("binary %s: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("binary %s is a directory", path)
	}

	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("binary %s is not executable", path)
	}

	return nil
}
