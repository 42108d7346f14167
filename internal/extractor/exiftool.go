package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"sitevault/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the exiftool client.
type Option func(*ExifTool)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *ExifTool) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// ExifTool extracts metadata by shelling out to exiftool.
type ExifTool struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewExifTool constructs an exiftool-backed extractor.
func NewExifTool(binary string, timeoutSeconds int) (*ExifTool, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("extractor binary required")
	}
	if timeoutSeconds <= 0 {
		return nil, errors.New("extractor timeout must be positive")
	}
	return &ExifTool{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}, nil
}

// NewExifToolWithOptions constructs an exiftool client with overrides applied.
func NewExifToolWithOptions(binary string, timeoutSeconds int, opts ...Option) (*ExifTool, error) {
	client, err := NewExifTool(binary, timeoutSeconds)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Extract runs exiftool against path and flattens its JSON output. The call
// is bounded by the configured timeout regardless of the parent context.
func (e *ExifTool) Extract(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("extract: empty path")
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	output, err := e.exec.Run(runCtx, e.binary, []string{"-json", "-n", "--", path})
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return Result{}, services.Wrap(services.ErrTimeout, "extractor", "extract", fmt.Sprintf("%s timed out after %s", path, e.timeout), nil)
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "extractor", "extract", path, err)
	}

	fields, err := parseExifToolOutput(output)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "extractor", "extract", path, err)
	}
	return Result{Fields: fields, raw: append([]byte(nil), output...)}, nil
}

// parseExifToolOutput flattens exiftool's one-element JSON array into Fields.
func parseExifToolOutput(output []byte) (Fields, error) {
	var entries []map[string]any
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("parse extractor output: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("extractor produced no entries")
	}

	fields := make(Fields, len(entries[0]))
	for key, value := range entries[0] {
		fields[key] = stringifyValue(value)
	}
	return fields, nil
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}
