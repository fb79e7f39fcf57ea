// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

const resourceReport = "report"

// Report is a stored fingerprint run.
type Report struct {
	ID        string              `json:"id"`
	Target    string              `json:"target,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Records   int                 `json:"records"`
	Result    *fingerprint.Result `json:"result"`
}

// ReportSummary is the listing view of a Report.
type ReportSummary struct {
	ID        string    `json:"id"`
	Target    string    `json:"target,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Matches   int       `json:"matches"`
}

// ReportStore persists fingerprint reports.
type ReportStore interface {
	Save(ctx context.Context, report *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context) ([]ReportSummary, error)
}

// LocalStore keeps one JSON file per report in a directory.
type LocalStore struct {
	dir string
	now func() time.Time
}

// NewLocalStore creates the report directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, NewInvalidInputError("dir", "report directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &LocalStore{dir: dir, now: time.Now}, nil
}

// NewReportID returns a fresh report identifier.
func NewReportID() string {
	return uuid.NewString()
}

// Save writes report, assigning an ID and creation time when they are unset.
func (s *LocalStore) Save(ctx context.Context, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report == nil || report.Result == nil {
		return NewInvalidInputError("result", "report has no result")
	}
	if report.ID == "" {
		report.ID = NewReportID()
	} else if err := validateID(report.ID); err != nil {
		return err
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now().UTC()
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(report.ID)); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// Get reads a report by ID.
func (s *LocalStore) Get(ctx context.Context, id string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError(resourceReport, id)
		}
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// List returns summaries of all stored reports, newest first. Unreadable files are
// skipped.
func (s *LocalStore) List(ctx context.Context) ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	summaries := make([]ReportSummary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		report, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		summaries = append(summaries, ReportSummary{
			ID:        report.ID,
			Target:    report.Target,
			CreatedAt: report.CreatedAt,
			Matches:   len(report.Result.Matches),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// validateID only admits UUIDs, which keeps IDs from escaping the report directory.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewInvalidInputError("id", "report id must be a UUID")
	}
	return nil
}
