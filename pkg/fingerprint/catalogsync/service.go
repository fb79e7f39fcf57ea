// Package catalogsync fetches custom rule catalogs and stores them in the workspace cache,
// where fingerprint.LoadCachedCatalog picks them up.
package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

// maxCatalogBytes bounds how much a remote source may return.
const maxCatalogBytes = 8 << 20

// Source loads the raw rules catalog bytes (YAML) from a backing store.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// Store persists the catalog bytes to a destination (e.g., workspace cache).
type Store interface {
	Save(ctx context.Context, data []byte) error
}

// Result describes a completed sync.
type Result struct {
	RuleCount int                           `json:"rule_count"`
	Path      string                        `json:"path"`
	Report    *fingerprint.ValidationReport `json:"report"`
}

// Service orchestrates catalog synchronization.
type Service struct {
	Source   Source
	Store    Store
	CacheDir string
	Strict   bool
}

// Sync fetches the catalog from Source, validates it, and writes it using Store. A catalog
// with validation errors is not stored.
func (s Service) Sync(ctx context.Context) (*Result, error) {
	if s.Source == nil {
		return nil, errors.New("catalog source is not configured")
	}
	if s.Store == nil {
		return nil, errors.New("catalog store is not configured")
	}
	if s.CacheDir == "" {
		return nil, fingerprint.NewStorageDisabledError()
	}

	data, err := s.Source.Load(ctx)
	if err != nil {
		return nil, fingerprint.WrapSyncError(fmt.Errorf("load catalog: %w", err))
	}

	rules, err := fingerprint.ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	report := fingerprint.NewValidator(s.Strict).ValidateRules(rules)
	if !report.IsValid() {
		return &Result{RuleCount: len(rules), Report: report},
			fmt.Errorf("validate catalog: %w", fingerprint.NewValidationError(len(report.Errors), len(report.Warnings)))
	}

	if err := s.Store.Save(ctx, data); err != nil {
		return nil, fingerprint.WrapSyncError(fmt.Errorf("save catalog: %w", err))
	}

	return &Result{
		RuleCount: len(rules),
		Path:      CachePath(s.CacheDir),
		Report:    report,
	}, nil
}

// CachePath returns where a synced rules catalog lives inside cacheDir.
func CachePath(cacheDir string) string {
	return filepath.Join(cacheDir, fingerprint.CachedRulesFile)
}

// FileSource loads the catalog from a local file path.
type FileSource struct {
	Path string
}

func (f FileSource) Load(_ context.Context) ([]byte, error) {
	if f.Path == "" {
		return nil, errors.New("file path is empty")
	}
	return os.ReadFile(f.Path)
}

// HTTPSource downloads the catalog from a URL using the provided http.Client (or default).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (h HTTPSource) Load(ctx context.Context) ([]byte, error) {
	if h.URL == "" {
		return nil, errors.New("url is empty")
	}
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status from catalog source: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	if len(data) > maxCatalogBytes {
		return nil, fmt.Errorf("catalog exceeds %d bytes", maxCatalogBytes)
	}
	return data, nil
}

// FileStore writes the catalog bytes to a path on disk. The write goes through a temporary
// file so readers never observe a partial catalog.
type FileStore struct {
	Path string
}

func (f FileStore) Save(_ context.Context, data []byte) error {
	if f.Path == "" {
		return errors.New("file store path is empty")
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rules-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	_ = tmp.Chmod(0o644)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}
