package fingerprint

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	matchTypeDetected = "detected"
	matchTypeNoMatch  = "no_match"
)

// DetectionEvent represents one line of the telemetry JSONL file. A run produces one
// "detected" event per match, or a single "no_match" event when nothing matched.
type DetectionEvent struct {
	Timestamp     time.Time  `json:"timestamp"`
	RunID         string     `json:"run_id"`
	Target        string     `json:"target,omitempty"`
	MatchType     string     `json:"match_type"` // "detected" or "no_match"
	RuleID        string     `json:"rule_id,omitempty"`
	Name          string     `json:"name,omitempty"`
	Category      Category   `json:"category,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`
	EvidenceCount int        `json:"evidence_count,omitempty"`
	Records       int        `json:"records"`
}

// TelemetryWriter writes detection events to a JSONL file in a thread-safe manner.
type TelemetryWriter struct {
	filePath string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	enabled  bool
	now      func() time.Time
}

// NewTelemetryWriter creates a telemetry writer that appends to filePath.
// If filePath is empty, the writer is disabled.
func NewTelemetryWriter(filePath string) (*TelemetryWriter, error) {
	if filePath == "" {
		return &TelemetryWriter{enabled: false}, nil
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry file: %w", err)
	}

	return &TelemetryWriter{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
		enabled:  true,
		now:      time.Now,
	}, nil
}

// Write writes a single event.
func (w *TelemetryWriter) Write(event DetectionEvent) error {
	if w == nil || !w.enabled {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("telemetry file %s is closed", w.filePath)
	}
	if err := w.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to write telemetry event: %w", err)
	}
	return nil
}

// WriteRun records the outcome of one fingerprint run.
func (w *TelemetryWriter) WriteRun(runID, target string, records int, result *Result) error {
	if w == nil || !w.enabled {
		return nil
	}

	ts := w.now()
	if result == nil || len(result.Matches) == 0 {
		return w.Write(DetectionEvent{
			Timestamp: ts,
			RunID:     runID,
			Target:    target,
			MatchType: matchTypeNoMatch,
			Records:   records,
		})
	}

	for _, m := range result.Matches {
		event := DetectionEvent{
			Timestamp:     ts,
			RunID:         runID,
			Target:        target,
			MatchType:     matchTypeDetected,
			RuleID:        m.Rule.ID,
			Name:          m.Rule.Name,
			Category:      m.Rule.Category,
			Confidence:    m.Rule.Confidence,
			EvidenceCount: len(m.Evidence),
			Records:       records,
		}
		if err := w.Write(event); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the telemetry file.
func (w *TelemetryWriter) Close() error {
	if w == nil || !w.enabled || w.file == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close telemetry file: %w", err)
	}

	w.file = nil
	return nil
}

// IsEnabled returns true if telemetry is enabled.
func (w *TelemetryWriter) IsEnabled() bool {
	return w != nil && w.enabled
}
