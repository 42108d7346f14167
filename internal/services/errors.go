package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	// ErrIntegrity marks the only data-fatal condition in the pipeline: bytes
	// that cannot be located or verified at any known path.
	ErrIntegrity = errors.New("integrity failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsIntegrityFatal reports whether an error requires operator attention rather
// than a logged skip. Everything else in the taxonomy is recoverable.
func IsIntegrityFatal(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsRecoverableSkip reports whether an error should be logged and counted
// without aborting the batch.
func IsRecoverableSkip(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrIntegrity):
		return false
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout),
		errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrTransient):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
