package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

const (
	// Time a killed engine gets to release its output pipes
	engineWaitDelay = 2 * time.Second
	// Longest stderr excerpt written to the engine log
	maxLoggedStderr = 4096
)

// ReasonNoBinary is reported when no engine binary is configured
const ReasonNoBinary = "no engine binary configured"

// engineRun is the captured outcome of one engine invocation
type engineRun struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// engineRunner launches the configured engine binary and maps process
// outcomes onto domain error kinds
type engineRunner struct {
	binary      string
	baseArgs    []string
	eventLogger *logger.MultiLogger
}

func newEngineRunner(binary string, baseArgs []string, eventLogger *logger.MultiLogger) *engineRunner {
	return &engineRunner{
		binary:      binary,
		baseArgs:    append([]string(nil), baseArgs...),
		eventLogger: eventLogger,
	}
}

// check verifies the binary can be located
func (r *engineRunner) check() error {
	if r.binary == "" {
		return domain.NewEngineError(domain.KindEngineUnavailable, ReasonNoBinary, "", nil)
	}
	if _, err := exec.LookPath(r.binary); err != nil {
		return domain.NewEngineError(domain.KindEngineUnavailable, domain.ReasonNotFound, r.binary, err)
	}
	return nil
}

// run executes the engine with baseArgs followed by args. The returned
// engineRun is populated whenever the process was started.
func (r *engineRunner) run(ctx context.Context, mode string, args ...string) (*engineRun, error) {
	if r.binary == "" {
		return nil, domain.NewEngineError(domain.KindEngineUnavailable, ReasonNoBinary, "", nil)
	}

	fullArgs := append(append([]string(nil), r.baseArgs...), args...)
	cmdLine := ShellEscapeCommand(r.binary, fullArgs...)

	cmd := exec.CommandContext(ctx, r.binary, fullArgs...)
	cmd.WaitDelay = engineWaitDelay
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		r.logEvent("engine_launch_failed", zap.String("mode", mode), zap.String("command", cmdLine), zap.Error(err))
		if isNotFound(err) {
			return nil, domain.NewEngineError(domain.KindEngineUnavailable, domain.ReasonNotFound, r.binary, err)
		}
		return nil, domain.NewEngineError(domain.KindEngineUnavailable, "failed to start engine", r.binary, err)
	}

	waitErr := cmd.Wait()
	result := &engineRun{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	r.logEvent("engine_invocation",
		zap.String("mode", mode),
		zap.String("command", cmdLine),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration),
		zap.String("stderr", truncateOutput(stderr.String(), maxLoggedStderr)))

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, domain.NewEngineError(domain.KindEngineTimeout, domain.ReasonTimeout, stderr.String(), ctxErr)
		}
		return result, domain.NewEngineError(domain.KindEngineProcess, "cancelled", stderr.String(), ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return result, domain.NewEngineError(domain.KindEngineProcess, domain.ReasonProcessFailed, stderr.String(), waitErr)
		}
		return result, domain.NewEngineError(domain.KindEngineProcess, domain.ReasonProcessFailed, stderr.String(),
			fmt.Errorf("failed waiting for engine: %w", waitErr))
	}

	return result, nil
}

func (r *engineRunner) logEvent(event string, fields ...zap.Field) {
	if r.eventLogger != nil {
		r.eventLogger.LogEngineEvent(event, fields...)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}
