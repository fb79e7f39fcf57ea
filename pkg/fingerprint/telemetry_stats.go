package fingerprint

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// StatsFilter narrows the events considered by AnalyzeTelemetry.
type StatsFilter struct {
	Category Category
	Target   string
	Since    *time.Time
	Until    *time.Time
	TopN     int
}

// NameCount is a detected technology and the number of runs it was seen in.
type NameCount struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// TelemetryStats aggregates a telemetry file.
type TelemetryStats struct {
	TotalEvents    int              `json:"total_events"`
	Runs           int              `json:"runs"`
	RunsWithMatch  int              `json:"runs_with_match"`
	NoMatchRuns    int              `json:"no_match_runs"`
	Detections     int              `json:"detections"`
	MatchRate      float64          `json:"match_rate"`
	ByCategory     map[Category]int `json:"by_category"`
	ByConfidence   map[string]int   `json:"by_confidence"`
	TopNames       []NameCount      `json:"top_names"`
	MalformedLines int              `json:"malformed_lines"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
}

// AnalyzeTelemetry reads a JSONL telemetry file and aggregates run and detection counts.
// Lines that are not valid events are counted and skipped.
func AnalyzeTelemetry(path string, filter *StatsFilter) (*TelemetryStats, error) {
	if filter == nil {
		filter = &StatsFilter{}
	}
	topN := filter.TopN
	if topN <= 0 {
		topN = 10
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry file: %w", err)
	}
	defer file.Close()

	stats := &TelemetryStats{
		ByCategory:   make(map[Category]int),
		ByConfidence: make(map[string]int),
		TopNames:     make([]NameCount, 0),
	}
	runs := make(map[string]bool)
	names := make(map[string]*NameCount)
	nameRuns := make(map[string]map[string]struct{})

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event DetectionEvent
		if err := json.Unmarshal(line, &event); err != nil {
			stats.MalformedLines++
			continue
		}
		if !filter.matches(event) {
			continue
		}

		stats.TotalEvents++
		if stats.StartTime.IsZero() || event.Timestamp.Before(stats.StartTime) {
			stats.StartTime = event.Timestamp
		}
		if event.Timestamp.After(stats.EndTime) {
			stats.EndTime = event.Timestamp
		}

		matched := event.MatchType == matchTypeDetected
		if seen, ok := runs[event.RunID]; !ok || (!seen && matched) {
			runs[event.RunID] = matched
		}
		if !matched {
			continue
		}

		stats.Detections++
		stats.ByCategory[event.Category]++
		stats.ByConfidence[string(event.Confidence)]++

		if _, ok := nameRuns[event.Name]; !ok {
			nameRuns[event.Name] = make(map[string]struct{})
			names[event.Name] = &NameCount{Name: event.Name, Category: event.Category}
		}
		if _, ok := nameRuns[event.Name][event.RunID]; !ok {
			nameRuns[event.Name][event.RunID] = struct{}{}
			names[event.Name].Count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read telemetry file: %w", err)
	}

	stats.Runs = len(runs)
	for _, matched := range runs {
		if matched {
			stats.RunsWithMatch++
		} else {
			stats.NoMatchRuns++
		}
	}
	if stats.Runs > 0 {
		stats.MatchRate = float64(stats.RunsWithMatch) / float64(stats.Runs)
	}

	for _, nc := range names {
		stats.TopNames = append(stats.TopNames, *nc)
	}
	sort.Slice(stats.TopNames, func(i, j int) bool {
		if stats.TopNames[i].Count != stats.TopNames[j].Count {
			return stats.TopNames[i].Count > stats.TopNames[j].Count
		}
		return stats.TopNames[i].Name < stats.TopNames[j].Name
	})
	if len(stats.TopNames) > topN {
		stats.TopNames = stats.TopNames[:topN]
	}
	return stats, nil
}

func (f *StatsFilter) matches(event DetectionEvent) bool {
	if f.Target != "" && event.Target != f.Target {
		return false
	}
	if f.Category != "" && event.MatchType == matchTypeDetected && event.Category != f.Category {
		return false
	}
	if f.Since != nil && event.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && event.Timestamp.After(*f.Until) {
		return false
	}
	return true
}
