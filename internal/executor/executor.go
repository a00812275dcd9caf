package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Belphemur/MediaDownloader/internal/apperrors"
	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

// DefaultOutputLines is how many trailing output lines are kept as the result message
const DefaultOutputLines = 20

// Executor runs an external downloader to completion
type Executor interface {
	// Execute spawns the downloader selected by kind and waits for it to exit.
	// A non-zero exit or a spawn failure returns *apperrors.ErrExecFailed.
	Execute(ctx context.Context, kind DownloaderKind, args models.ExecArgs) (*models.ExecResult, error)

	// BinDir returns the directory the downloader executables are resolved in
	BinDir() string
}

// ProcessExecutor spawns downloaders from a bin directory with os/exec
type ProcessExecutor struct {
	binDir      string
	outputLines int
	goos        string
}

// NewExecutor creates an executor resolving binaries in binDir
func NewExecutor(binDir string) *ProcessExecutor {
	return &ProcessExecutor{
		binDir:      binDir,
		outputLines: DefaultOutputLines,
		goos:        runtime.GOOS,
	}
}

// BinDir returns the directory holding the downloader executables
func (e *ProcessExecutor) BinDir() string {
	return e.binDir
}

// BinaryPath returns the full path of the executable for kind
func (e *ProcessExecutor) BinaryPath(kind DownloaderKind) string {
	return filepath.Join(e.binDir, executableName(kind.String(), e.goos))
}

// Execute runs one download. The returned result carries the tail of the combined
// stdout/stderr output; on failure the same tail is in the error message.
func (e *ProcessExecutor) Execute(ctx context.Context, kind DownloaderKind, args models.ExecArgs) (*models.ExecResult, error) {
	logger := config.GetLogger()

	if _, ok := strategies[kind]; !ok {
		return nil, &apperrors.ErrUnknownDownloader{Name: kind.String()}
	}

	if args.WorkDir != "" {
		if err := os.MkdirAll(args.WorkDir, 0o755); err != nil {
			return nil, &apperrors.ErrExecFailed{Code: -1, Message: fmt.Sprintf("failed to create work directory: %v", err)}
		}
	}

	binary := e.BinaryPath(kind)
	argv := kind.Argv(args)
	output := NewOutputBuffer(e.outputLines)

	cmd := exec.CommandContext(ctx, binary, argv...)
	cmd.Dir = e.binDir
	cmd.Stdout = output
	cmd.Stderr = output

	logger.Info().
		Str("downloader", kind.String()).
		Str("url", args.URL).
		Str("workDir", args.WorkDir).
		Str("name", args.Name).
		Msg("Starting downloader")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		logger.Error().Err(err).Str("binary", binary).Msg("Failed to start downloader")
		return nil, &apperrors.ErrExecFailed{Code: -1, Message: err.Error()}
	}

	err := cmd.Wait()
	message := output.String()
	elapsed := time.Since(start)

	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if message == "" {
			message = err.Error()
		}
		logger.Warn().
			Str("downloader", kind.String()).
			Str("url", args.URL).
			Int("exitCode", code).
			Dur("elapsed", elapsed).
			Msg("Downloader failed")
		return nil, &apperrors.ErrExecFailed{Code: code, Message: message}
	}

	logger.Info().
		Str("downloader", kind.String()).
		Str("url", args.URL).
		Dur("elapsed", elapsed).
		Msg("Downloader finished")
	return &models.ExecResult{ExitCode: 0, Message: message}, nil
}

// executableName appends .exe on Windows
func executableName(name, goos string) string {
	if goos == "windows" && !strings.HasSuffix(name, ".exe") {
		return name + ".exe"
	}
	return name
}
