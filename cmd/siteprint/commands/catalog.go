package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/cmd/siteprint/internal/bind"
	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
	"github.com/vulntor/siteprint/pkg/appctx"
	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/fingerprint/catalogsync"
	"github.com/vulntor/siteprint/pkg/logging"
	"github.com/vulntor/siteprint/pkg/workspace"
)

// NewCatalogCommand groups the rule catalog commands.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Short:   "Inspect, validate and sync the fingerprint catalog",
		GroupID: "catalog",
	}

	cmd.AddCommand(newCatalogRulesCommand())
	cmd.AddCommand(newCatalogCookiesCommand())
	cmd.AddCommand(newCatalogValidateCommand())
	cmd.AddCommand(newCatalogSyncCommand())

	return cmd
}

func newCatalogRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules of the active catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter := format.FromCommand(cmd)

			opts, err := bind.BindRulesOptions(cmd)
			if err != nil {
				return formatter.PrintTotalFailureSummary("list rules", err, "")
			}
			catalog, err := activeCatalog(cmd)
			if err != nil {
				return formatter.PrintTotalFailureSummary("load catalog", err, errorCode(err))
			}

			rules := make([]fingerprint.Rule, 0, catalog.RuleCount())
			for _, r := range catalog.Rules() {
				if opts.Category == "" || r.Category == opts.Category {
					rules = append(rules, r)
				}
			}
			if formatter.IsJSON() {
				return formatter.PrintJSON(rules)
			}

			rows := make([][]string, 0, len(rules))
			for _, r := range rules {
				rows = append(rows, []string{r.ID, r.Name, string(r.Category), string(r.Confidence), describeChecks(r.Match)})
			}
			if err := formatter.PrintTable([]string{"id", "name", "category", "confidence", "checks"}, rows); err != nil {
				return err
			}
			return formatter.PrintSummary(fmt.Sprintf("%d rules", len(rules)))
		},
	}

	cmd.Flags().String("category", "", "Only list rules of this category")
	config.BindCatalogFlags(cmd.Flags())

	return cmd
}

func newCatalogCookiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "List the cookie signatures of the active catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter := format.FromCommand(cmd)

			catalog, err := activeCatalog(cmd)
			if err != nil {
				return formatter.PrintTotalFailureSummary("load catalog", err, errorCode(err))
			}

			signatures := catalog.CookieSignatures()
			if formatter.IsJSON() {
				return formatter.PrintJSON(signatures)
			}

			rows := make([][]string, 0, len(signatures))
			for _, s := range signatures {
				rows = append(rows, []string{s.Pattern, s.Provider, string(s.Category), string(s.Risk), yesNo(s.BypassRequired)})
			}
			if err := formatter.PrintTable([]string{"pattern", "provider", "category", "risk", "bypass"}, rows); err != nil {
				return err
			}
			return formatter.PrintSummary(fmt.Sprintf("%d cookie signatures", len(signatures)))
		},
	}

	config.BindCatalogFlags(cmd.Flags())

	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [rules-file...]",
		Short: "Validate rule and cookie signature catalogs",
		Long: `Validate checks rule files for errors (duplicate IDs, invalid patterns, unknown
categories, empty match specs) and warnings (missing descriptions, misplaced bypass
hints). Without arguments the built-in catalog is validated.`,
		Example: `  siteprint catalog validate
  siteprint catalog validate custom-rules.yaml --cookies custom-cookies.yaml --strict`,
		RunE: runCatalogValidate,
	}

	cmd.Flags().StringSlice("cookies", nil, "Cookie signature files to validate")
	cmd.Flags().Bool("strict", false, "Treat warnings as errors")

	return cmd
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	opts, err := bind.BindValidateOptions(cmd, args)
	if err != nil {
		return formatter.PrintTotalFailureSummary("validate catalog", err, "")
	}

	validator := fingerprint.NewValidator(opts.Strict)
	report := &fingerprint.ValidationReport{}
	if len(opts.RulesFiles) == 0 && len(opts.CookiesFiles) == 0 {
		builtin := fingerprint.Default()
		report = validator.ValidateRules(builtin.Rules())
		report.Merge(validator.ValidateCookieSignatures(builtin.CookieSignatures()))
	} else {
		var (
			rules      []fingerprint.Rule
			signatures []fingerprint.CookieSignature
		)
		for _, path := range opts.RulesFiles {
			loaded, err := fingerprint.LoadRulesFromFile(path)
			if err != nil {
				return formatter.PrintTotalFailureSummary("validate catalog", err, errorCode(err))
			}
			rules = append(rules, loaded...)
		}
		for _, path := range opts.CookiesFiles {
			loaded, err := fingerprint.LoadCookieSignaturesFromFile(path)
			if err != nil {
				return formatter.PrintTotalFailureSummary("validate catalog", err, errorCode(err))
			}
			signatures = append(signatures, loaded...)
		}
		if len(opts.RulesFiles) > 0 {
			report = validator.ValidateRules(rules)
		}
		if len(opts.CookiesFiles) > 0 {
			report.Merge(validator.ValidateCookieSignatures(signatures))
		}
	}

	if err := formatter.PrintValidationReport(report); err != nil {
		return err
	}
	if !report.IsValid() {
		err := fingerprint.NewValidationError(len(report.Errors), len(report.Warnings))
		if formatter.IsJSON() {
			// the report already carries "valid": false
			return &format.ReportedError{Err: err}
		}
		return formatter.PrintTotalFailureSummary("validate catalog", err, errorCode(err))
	}
	if formatter.IsJSON() {
		return nil
	}
	return formatter.PrintSuccessSummary("validate", fmt.Sprintf("%d rules, %d cookie signatures", report.RuleCount, report.SignatureCount))
}

func newCatalogSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch a rule catalog, validate it and store it in the workspace cache",
		Long: `Sync downloads a rules catalog from --url or reads it from --file, validates it
and stores it as the workspace's synced catalog. Commands use the synced catalog
in place of the built-in extension files when no custom catalog flag is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter := format.FromCommand(cmd)

			opts, err := bind.BindSyncOptions(cmd)
			if err != nil {
				return formatter.PrintTotalFailureSummary("sync catalog", err, errorCode(err))
			}

			cacheDir := opts.CacheDir
			if cacheDir == "" {
				if root, ok := workspace.FromContext(cmd.Context()); ok {
					cacheDir = workspace.CatalogCacheDir(root)
				}
			}

			var source catalogsync.Source
			if opts.FilePath != "" {
				source = catalogsync.FileSource{Path: opts.FilePath}
			} else {
				source = catalogsync.HTTPSource{URL: opts.URL}
			}

			svc := catalogsync.Service{
				Source:   source,
				Store:    catalogsync.FileStore{Path: catalogsync.CachePath(cacheDir)},
				CacheDir: cacheDir,
				Strict:   opts.Strict,
			}

			result, err := svc.Sync(cmd.Context())
			if err != nil {
				if result != nil && result.Report != nil && !formatter.IsJSON() {
					_ = formatter.PrintValidationReport(result.Report)
				}
				return formatter.PrintTotalFailureSummary("sync catalog", err, errorCode(err))
			}

			logger := logging.Component("catalog")
			logger.Info().
				Int("rules", result.RuleCount).
				Str("path", result.Path).
				Msg("catalog synced")

			return formatter.PrintSyncResult(result)
		},
	}

	cmd.Flags().String("file", "", "Load the rule catalog from a local file")
	cmd.Flags().String("url", "", "Download the rule catalog from a remote URL")
	cmd.Flags().String("cache-dir", "", "Override the catalog cache directory")
	cmd.Flags().Bool("strict", false, "Reject catalogs with validation warnings")

	return cmd
}

// activeCatalog resolves the catalog the analyze command would use.
func activeCatalog(cmd *cobra.Command) (*fingerprint.Catalog, error) {
	ctx := cmd.Context()
	root, hasWorkspace := workspace.FromContext(ctx)
	engine, err := loadEngine(appctx.ConfigOrDefault(ctx).Catalog, root, hasWorkspace, logging.Component("catalog"))
	if err != nil {
		return nil, err
	}
	return engine.Catalog(), nil
}

func describeChecks(m fingerprint.MatchSpec) string {
	var checks []string
	if m.Header != "" {
		header := "header " + m.Header
		if m.HeaderPrefix {
			header += "*"
		}
		if m.HeaderValue != "" {
			header += "=" + m.HeaderValue
		}
		checks = append(checks, header)
	}
	if m.Cookie != "" {
		checks = append(checks, "cookie "+m.Cookie)
	}
	if m.Body != "" {
		checks = append(checks, "body")
	}
	if m.Status != 0 {
		checks = append(checks, fmt.Sprintf("status %d", m.Status))
	}
	return strings.Join(checks, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
