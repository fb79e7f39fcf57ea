// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server"
)

// PrintSuccessSummary prints a standardized success message
// Examples:
//   - "✓ Sync completed: 42 rules"
//   - "✓ Validate completed successfully"
func (f *formatter) PrintSuccessSummary(operation, detail string) error {
	if f.quiet {
		return nil
	}

	if f.mode == ModeJSON {
		return f.PrintJSON(map[string]any{
			"success":   true,
			"operation": operation,
			"detail":    detail,
		})
	}

	message := fmt.Sprintf("✓ %s completed successfully", capitalize(operation))
	if detail != "" {
		message = fmt.Sprintf("✓ %s completed: %s", capitalize(operation), detail)
	}

	if f.color {
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	}

	_, err := fmt.Fprintln(f.stdout, message)
	return err
}

// PrintTotalFailureSummary prints total failure with error and suggestions
// Example output:
//
//	✗ Failed to analyze evidence: invalid evidence: no evidence records
//
//	💡 Suggestions:
//	  → Evidence must be JSON, JSON Lines or YAML records
//
// The error is returned wrapped in ReportedError so the caller does not print it again.
func (f *formatter) PrintTotalFailureSummary(operation string, err error, errorCode string) error {
	if err == nil {
		return nil
	}
	if f.quiet {
		return &ReportedError{Err: err}
	}

	if f.mode == ModeJSON {
		if printErr := f.PrintJSON(map[string]any{
			"success":    false,
			"operation":  operation,
			"error":      err.Error(),
			"error_code": errorCode,
		}); printErr != nil {
			return printErr
		}
		return &ReportedError{Err: err}
	}

	var sb strings.Builder

	errorMsg := fmt.Sprintf("✗ Failed to %s: %v", operation, err)
	if f.color {
		sb.WriteString(color.RedString("%s\n", errorMsg))
	} else {
		sb.WriteString(errorMsg + "\n")
	}

	suggestions := GetSuggestions(errorCode, err)
	if len(suggestions) > 0 {
		sb.WriteString("\n💡 Suggestions:\n")
		for _, s := range suggestions {
			sb.WriteString(fmt.Sprintf("  → %s\n", s))
		}
	}

	if _, writeErr := f.stderr.Write([]byte(sb.String())); writeErr != nil {
		return writeErr
	}
	return &ReportedError{Err: err}
}

// ReportedError marks an error that has already been shown to the user.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

var suggestionGenerators = map[string]func() []string{
	"INVALID_TIME_FORMAT": func() []string {
		return []string{
			"Use RFC3339 timestamps:     --since 2025-01-01T00:00:00Z",
		}
	},
	"TELEMETRY_ANALYSIS_FAILED": func() []string {
		return []string{
			"Point stats at the file set by --telemetry.file",
			"Run analyze with --telemetry.file to record events first",
		}
	},
	"REPORT_STORE_FAILED": func() []string {
		return []string{
			"Check workspace permissions or rerun without --save",
			"Override workspace root:    siteprint analyze --workspace.dir <path>",
		}
	},
	"CONFIG_INVALID": func() []string {
		return []string{
			"Check the configuration file passed with --config",
			"Print the effective configuration: siteprint config show",
		}
	},
}

// GetSuggestions returns actionable hints for an error code. Codes owned by the
// fingerprint and server packages defer to their own suggestion tables.
func GetSuggestions(errorCode string, err error) []string {
	if generator, ok := suggestionGenerators[errorCode]; ok {
		return generator()
	}
	switch {
	case strings.HasPrefix(errorCode, "SERVER_"):
		return server.Suggestions(err)
	case strings.HasPrefix(errorCode, "CATALOG_"), strings.HasPrefix(errorCode, "EVIDENCE_"):
		return fingerprint.Suggestions(err)
	default:
		return nil
	}
}

// capitalize capitalizes the first letter of a string
func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
