package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
	"sitevault/internal/logging"
)

// CleanStaleResult contains the outcome of a staging cleanup sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes staging files older than maxAge whose assets are fully
// archived and verified. Files backing in-flight or flagged assets are
// always retained, whatever their age. Emptied location directories are
// removed afterwards.
func CleanStale(ctx context.Context, store *catalog.Store, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	retained, err := store.RetainedStagingDigests(ctx)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())
		cleanLocationDir(dirPath, retained, cutoff, logger, &result)

		// Drop the per-location directory once it is empty.
		if remaining, err := os.ReadDir(dirPath); err == nil && len(remaining) == 0 {
			if err := os.Remove(dirPath); err == nil {
				result.Removed = append(result.Removed, dirPath)
			}
		}
	}

	return result
}

func cleanLocationDir(dirPath string, retained map[string]struct{}, cutoff time.Time, logger *slog.Logger, result *CleanStaleResult) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
		return
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		path := filepath.Join(dirPath, file.Name())

		prefix := digestPrefix(file.Name())
		if _, keep := retained[prefix]; keep {
			continue
		}

		info, err := file.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale staging file",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "staging_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				)
			}
		} else {
			result.Removed = append(result.Removed, path)
			if logger != nil {
				logger.Info("removed stale staging file",
					logging.String("path", path),
					logging.Duration("age", time.Since(info.ModTime())),
					logging.String(logging.FieldEventType, "staging_cleanup"),
				)
			}
		}
	}
}

// digestPrefix extracts the leading digest characters from a staging
// filename of the form {digest8}{ext}.
func digestPrefix(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if len(base) > hashing.ShortLen {
		base = base[:hashing.ShortLen]
	}
	return strings.ToLower(base)
}
