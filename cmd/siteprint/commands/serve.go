package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/cmd/siteprint/internal/bind"
	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
	"github.com/vulntor/siteprint/pkg/appctx"
	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/logging"
	serversvc "github.com/vulntor/siteprint/pkg/server"
	"github.com/vulntor/siteprint/pkg/server/app"
	"github.com/vulntor/siteprint/pkg/server/metrics"
	"github.com/vulntor/siteprint/pkg/storage"
	"github.com/vulntor/siteprint/pkg/workspace"
)

// NewServeCommand creates the 'siteprint serve' command.
//
// The server exposes the fingerprint engine over HTTP:
//   - REST API (/api/v1/fingerprint, /api/v1/reports, /api/v1/catalog/*)
//   - Health and readiness endpoints (/healthz, /readyz)
//   - Prometheus metrics (/metrics)
//
// It runs until SIGINT/SIGTERM, then drains in-flight requests. SIGHUP reloads the
// catalog.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fingerprint engine over HTTP",
		Long: `Start the siteprint HTTP server.

Evidence posted to /api/v1/fingerprint is analyzed with the active catalog. With
--server.store_reports results are kept in the workspace and listed under
/api/v1/reports. --catalog.watch reloads custom catalog files when they change.`,
		Example: `  siteprint serve
  siteprint serve --server.addr 0.0.0.0 --server.port 9090 --server.store_reports
  SITEPRINT_SERVER_AUTH_TOKEN=secret siteprint serve --catalog.rules_file rules.yaml --catalog.watch`,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}

	config.BindServerFlags(cmd.Flags())
	config.BindCatalogFlags(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	formatter := format.FromCommand(cmd)
	fail := func(err error) error {
		return formatter.PrintTotalFailureSummary("start server", err, serversvc.ErrorCode(err))
	}

	cfgMgr, ok := appctx.Config(cmd.Context())
	if !ok {
		return fail(serversvc.ErrConfigUnavailable)
	}
	cfg := cfgMgr.Get()

	serverCfg, err := bind.BindServerOptions(cfg.Server)
	if err != nil {
		return fail(err)
	}

	logger := logging.Component("server")
	root, hasWorkspace := workspace.FromContext(cmd.Context())

	deps := &app.Deps{
		Catalog: app.CatalogOptions{
			RulesFile:   cfg.Catalog.RulesFile,
			CookiesFile: cfg.Catalog.CookiesFile,
			Watch:       cfg.Catalog.Watch,
		},
		Logger: logger,
	}
	if hasWorkspace {
		deps.Catalog.CacheDir = workspace.CatalogCacheDir(root)
	}

	if serverCfg.StoreReports {
		if !hasWorkspace {
			return fail(serversvc.WrapStorageInit(errors.New("report storage needs a workspace; drop --no-workspace")))
		}
		store, err := storage.NewLocalStore(workspace.ReportsDir(root))
		if err != nil {
			return fail(serversvc.WrapStorageInit(err))
		}
		deps.Reports = store
	}

	telemetry, err := fingerprint.NewTelemetryWriter(cfg.Telemetry.File)
	if err != nil {
		return fail(serversvc.WrapStorageInit(err))
	}
	// Close is idempotent; shutdown closes it first on a clean exit.
	defer func() { _ = telemetry.Close() }()
	deps.Telemetry = telemetry

	if serverCfg.MetricsEnabled {
		deps.Metrics = metrics.NewRecorder()
	}

	serverApp, err := app.New(cmd.Context(), serverCfg, deps)
	if err != nil {
		if errors.Is(err, fingerprint.ErrInvalidCatalog) {
			return fail(serversvc.WrapCatalogLoad(err))
		}
		return fail(serversvc.WrapAppInit(err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serverApp.Run(ctx); err != nil {
		return fail(serversvc.WrapRuntime(err))
	}
	return nil
}
