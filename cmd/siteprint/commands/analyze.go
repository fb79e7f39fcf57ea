package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/cmd/siteprint/internal/bind"
	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
	"github.com/vulntor/siteprint/pkg/appctx"
	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/evidence"
	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/logging"
	"github.com/vulntor/siteprint/pkg/storage"
	"github.com/vulntor/siteprint/pkg/workspace"
)

// NewAnalyzeCommand creates the command that fingerprints recorded responses.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [evidence-file...]",
		Short: "Identify the protection stack behind recorded HTTP responses",
		Long: `Analyze reads evidence records (JSON, JSON Lines or YAML) from files or standard
input and reports detected technologies, cookie classifications and the security
header audit.

The catalog is the built-in one, extended by --catalog.rules_file and
--catalog.cookies_file, or by a catalog previously stored with 'catalog sync'.`,
		Example: `  siteprint analyze probe.json
  curl-probe https://example.com | siteprint analyze --groups
  siteprint analyze --target example.com --save -o json probe.jsonl`,
		GroupID: "core",
		RunE:    runAnalyze,
	}

	cmd.Flags().String("target", "", "Label recorded with telemetry and stored reports")
	cmd.Flags().Bool("groups", false, "Show matches grouped into display sections")
	cmd.Flags().Bool("save", false, "Store the result as a report in the workspace")
	config.BindCatalogFlags(cmd.Flags())

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	ctx := cmd.Context()
	logger := logging.Component("analyze")

	opts, err := bind.BindAnalyzeOptions(cmd, args)
	if err != nil {
		return formatter.PrintTotalFailureSummary("analyze evidence", err, errorCode(err))
	}

	cfg := appctx.ConfigOrDefault(ctx)
	root, hasWorkspace := workspace.FromContext(ctx)

	records, err := readEvidence(cmd.InOrStdin(), opts.Inputs)
	if err != nil {
		return formatter.PrintTotalFailureSummary("read evidence", err, errorCode(err))
	}

	engine, err := loadEngine(cfg.Catalog, root, hasWorkspace, logger)
	if err != nil {
		return formatter.PrintTotalFailureSummary("load catalog", err, errorCode(err))
	}

	result := engine.Fingerprint(records)
	runID := uuid.NewString()

	logger.Debug().
		Str("run_id", runID).
		Int("records", len(records)).
		Int("matches", len(result.Matches)).
		Msg("fingerprint run complete")

	if err := recordTelemetry(cfg.Telemetry.File, runID, opts.Target, len(records), result); err != nil {
		logger.Warn().Err(err).Str("file", cfg.Telemetry.File).Msg("telemetry not recorded")
	}

	if opts.Save {
		if !hasWorkspace {
			return formatter.PrintTotalFailureSummary("store report", errors.New("workspace disabled for this run"), "REPORT_STORE_FAILED")
		}
		if err := saveReport(ctx, workspace.ReportsDir(root), runID, opts.Target, len(records), result); err != nil {
			return formatter.PrintTotalFailureSummary("store report", err, "REPORT_STORE_FAILED")
		}
		logger.Info().Str("id", runID).Msg("report stored")
	}

	if err := formatter.PrintResult(result, opts.Groups); err != nil {
		return err
	}
	if opts.Save && !formatter.IsJSON() {
		return formatter.PrintSummary(fmt.Sprintf("Report %s saved", runID))
	}
	return nil
}

// readEvidence decodes every input in order. "-" reads from stdin.
func readEvidence(stdin io.Reader, inputs []string) ([]fingerprint.Response, error) {
	var records []fingerprint.Response
	for _, input := range inputs {
		var (
			batch []fingerprint.Response
			err   error
		)
		if input == "-" {
			batch, err = evidence.Decode(stdin, evidence.FormatAuto)
		} else {
			batch, err = evidence.DecodeFile(input)
		}
		if err != nil {
			if !errors.Is(err, fingerprint.ErrInvalidEvidence) {
				err = fingerprint.NewInvalidEvidenceError(err)
			}
			return nil, fmt.Errorf("%s: %w", input, err)
		}
		records = append(records, batch...)
	}
	return records, nil
}

// loadEngine resolves the catalog the same way the server does: explicit files, then the
// synced cache in the workspace, then the built-in catalog.
func loadEngine(opts config.CatalogConfig, root string, hasWorkspace bool, logger zerolog.Logger) (*fingerprint.Engine, error) {
	cacheDir := ""
	if hasWorkspace {
		cacheDir = workspace.CatalogCacheDir(root)
	}
	catalog, err := fingerprint.ResolveCatalog(opts.RulesFile, opts.CookiesFile, cacheDir, logger)
	if err != nil {
		return nil, err
	}
	return fingerprint.NewEngine(catalog, fingerprint.WithLogger(logger)), nil
}

func recordTelemetry(path, runID, target string, records int, result *fingerprint.Result) error {
	if path == "" {
		return nil
	}
	w, err := fingerprint.NewTelemetryWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteRun(runID, target, records, result); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func saveReport(ctx context.Context, dir, runID, target string, records int, result *fingerprint.Result) error {
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		return err
	}
	return store.Save(ctx, &storage.Report{
		ID:      runID,
		Target:  target,
		Records: records,
		Result:  result,
	})
}
