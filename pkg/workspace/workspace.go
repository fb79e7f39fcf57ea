// Package workspace manages the on-disk directory where siteprint keeps synced catalogs,
// stored reports and logs.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vulntor/siteprint/pkg/paths"
)

// EnvRoot overrides the default workspace location.
const EnvRoot = "SITEPRINT_WORKSPACE"

const (
	CacheSubdir   = "cache"
	ReportsSubdir = "reports"
	LogsSubdir    = "logs"
)

var defaultSubdirs = []string{CacheSubdir, ReportsSubdir, LogsSubdir}

// Prepare ensures the workspace root and required subdirectories exist.
// It returns the absolute path to the workspace root that was prepared.
func Prepare(root string) (string, error) {
	if root == "" {
		root = DefaultRoot()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace path: %w", err)
	}

	if err := os.MkdirAll(absRoot, 0o750); err != nil {
		return "", fmt.Errorf("create workspace root: %w", err)
	}

	for _, sub := range defaultSubdirs {
		if err := os.MkdirAll(filepath.Join(absRoot, sub), 0o750); err != nil {
			return "", fmt.Errorf("create workspace subdir %q: %w", sub, err)
		}
	}

	return absRoot, nil
}

// DefaultRoot returns $SITEPRINT_WORKSPACE or the platform data directory.
func DefaultRoot() string {
	if dir := os.Getenv(EnvRoot); dir != "" {
		return dir
	}
	return paths.DataDir()
}

// CatalogCacheDir is where catalog sync stores fetched rules.
func CatalogCacheDir(root string) string {
	return filepath.Join(root, CacheSubdir, "fingerprint")
}

// ReportsDir is where fingerprint results are stored.
func ReportsDir(root string) string {
	return filepath.Join(root, ReportsSubdir)
}

// LogsDir holds telemetry and other log files.
func LogsDir(root string) string {
	return filepath.Join(root, LogsSubdir)
}

type ctxKey string

const workspaceRootKey ctxKey = "workspace.root"

// WithContext stores the prepared workspace root on the provided context.
func WithContext(ctx context.Context, root string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, workspaceRootKey, root)
}

// FromContext extracts the workspace root from context.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	root, ok := ctx.Value(workspaceRootKey).(string)
	return root, ok && root != ""
}

// Subdirectories returns the list of default workspace subdirectories.
func Subdirectories() []string {
	return append([]string(nil), defaultSubdirs...)
}
