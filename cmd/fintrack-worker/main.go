package main

import (
	"context"
	"os"
	"time"

	goption "google.golang.org/api/option"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/records"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker, nil)
	logger.Info("Starting fintrack-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.MustLoadConfig(logger)
	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Mirror configuration invalid", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is process-local; the mirror will only ever see an empty collection")
	}

	var (
		creds goption.ClientOption
		err   error
	)
	if cfg.HasServiceAccount() {
		creds, err = gsheet.Credentials(context.Background(), cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	} else {
		creds, err = gsheet.OAuthCredentials(context.Background(), cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile, cfg.GoogleOAuthTokenFile)
	}
	if err != nil {
		logger.Error("Failed to load Google credentials", applog.FieldError, err)
		os.Exit(1)
	}
	sheet, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName,
		creds, goption.WithUserAgent("fintrack-worker"))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	source := records.NewStore(res.Store, cfg.Namespace)
	mirror := worker.NewMirrorWorker(source, sheet, cfg.MirrorInterval)

	// Without a broker the worker still keeps the sheet current on the timer.
	var consumer worker.Consumer
	if res.Changes != nil {
		consumer = res.Changes
	} else {
		logger.Info("No AMQP broker configured; mirroring on the periodic timer only",
			"interval", cfg.MirrorInterval.String())
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(context.Context) {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Mirror worker running",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName,
		"namespace", cfg.Namespace,
		"interval", cfg.MirrorInterval.String())

	if err := mirror.Run(ctx, consumer); err != nil {
		logger.Error("Mirror worker stopped", applog.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
