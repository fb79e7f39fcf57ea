package format

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

// PrintStats renders telemetry aggregates as sectioned plain text.
func (f *formatter) PrintStats(stats *fingerprint.TelemetryStats, filter *fingerprint.StatsFilter) error {
	if stats == nil {
		return nil
	}
	if f.mode == ModeJSON {
		return f.PrintJSON(stats)
	}
	if filter == nil {
		filter = &fingerprint.StatsFilter{}
	}

	w := &errWriter{w: f.stdout}
	w.printf("Telemetry Statistics\n")
	w.printf("====================\n\n")

	if !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		w.printf("Time Range: %s to %s\n", stats.StartTime.Format(time.RFC3339), stats.EndTime.Format(time.RFC3339))
		w.printf("Duration: %s\n\n", stats.EndTime.Sub(stats.StartTime).Round(time.Second))
	}

	if filter.Category != "" {
		w.printf("Category Filter: %s\n", filter.Category)
	}
	if filter.Target != "" {
		w.printf("Target Filter: %s\n", filter.Target)
	}
	if filter.Category != "" || filter.Target != "" {
		w.printf("\n")
	}

	w.printf("Overall Statistics\n")
	w.printf("------------------\n")
	w.printf("Total Events:     %d\n", stats.TotalEvents)
	w.printf("Runs:             %d\n", stats.Runs)
	w.printf("Runs With Match:  %d\n", stats.RunsWithMatch)
	w.printf("No Match Runs:    %d\n", stats.NoMatchRuns)
	w.printf("Detections:       %d\n", stats.Detections)
	w.printf("Match Rate:       %.2f%%\n", stats.MatchRate*100)
	if stats.MalformedLines > 0 {
		w.printf("Malformed Lines:  %d\n", stats.MalformedLines)
	}
	w.printf("\n")

	if len(stats.ByCategory) > 0 {
		w.printf("Category Breakdown\n")
		w.printf("------------------\n")
		for _, c := range fingerprint.Categories() {
			if n := stats.ByCategory[c]; n > 0 {
				w.printf("%-16s %d\n", string(c)+":", n)
			}
		}
		w.printf("\n")
	}

	if len(stats.ByConfidence) > 0 {
		w.printf("Confidence Distribution\n")
		w.printf("-----------------------\n")
		levels := make([]string, 0, len(stats.ByConfidence))
		for level := range stats.ByConfidence {
			levels = append(levels, level)
		}
		sort.Slice(levels, func(i, j int) bool {
			return fingerprint.Confidence(levels[i]).Higher(fingerprint.Confidence(levels[j]))
		})
		for _, level := range levels {
			w.printf("%-8s %d\n", level+":", stats.ByConfidence[level])
		}
		w.printf("\n")
	}

	if len(stats.TopNames) > 0 {
		w.printf("Top %d Detected Technologies\n", len(stats.TopNames))
		w.printf("----------------------------\n")
		for i, n := range stats.TopNames {
			w.printf("%d. %s (%s): %d runs\n", i+1, n.Name, n.Category, n.Count)
		}
		w.printf("\n")
	}
	return w.err
}

// errWriter keeps the first write error so long sequences of prints need one check.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
