package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/studysync/internal/client/cli"
	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/config"
	"github.com/dmitrijs2005/studysync/internal/client/i18n"
	"github.com/dmitrijs2005/studysync/internal/client/identity"
	"github.com/dmitrijs2005/studysync/internal/client/repositories"
	"github.com/dmitrijs2005/studysync/internal/client/services"
	"github.com/dmitrijs2005/studysync/internal/client/storage"
	"github.com/dmitrijs2005/studysync/internal/cryptox"
	"github.com/dmitrijs2005/studysync/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	// stderr may refuse fsync on a terminal
	defer func() { _ = logging.Sync(logger) }()

	tr, err := i18n.New(cfg.Lang, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repositories.InitDatabase(ctx, cfg.LocalDBPath)
	if err != nil {
		return err
	}
	defer repos.Close()

	key, err := cryptox.LoadDeviceKey(cfg.DeviceKeyPath)
	if err != nil {
		return fmt.Errorf("device key: %w", err)
	}

	saver, err := newSaver(ctx, cfg)
	if err != nil {
		return err
	}

	api, err := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, client.WithLogger(logger))
	if err != nil {
		return err
	}

	store := identity.NewSealedStore(repos.DB, repos.Metadata, key)
	if at, ok, err := store.SavedAt(ctx); err != nil {
		logger.Warn(ctx, "stored session unreadable", "error", err)
	} else if ok {
		logger.Debug(ctx, "stored session found", "saved_at", at)
	}

	reader := bufio.NewReader(os.Stdin)
	provider := identity.NewToolkit(identity.ToolkitConfig{
		APIKey:          cfg.IdentityAPIKey,
		IdentityBaseURL: cfg.IdentityBaseURL,
		TokenBaseURL:    cfg.TokenBaseURL,
		HTTPClient:      &http.Client{Timeout: cfg.RequestTimeout},
		Store:           store,
		Flow:            cli.NewPasteFlow(reader, os.Stdout, tr),
		Logger:          logger,
	})

	auth := services.NewAuthService(provider, api, logger)
	defer auth.Close()

	app := cli.NewApp(cli.Deps{
		Session:       auth,
		Conversations: services.NewConversationService(api, auth, cfg.PageSize, logger),
		Progress:      services.NewProgressService(api, auth, cfg.PageSize, logger),
		Exams:         services.NewExamService(api, auth, cfg.PageSize, saver, repos.Downloads, logger),
		Translator:    tr,
		Logger:        logger,
		In:            reader,
		Out:           os.Stdout,
	})

	fmt.Fprintln(os.Stdout, tr.T("Restoring"))
	if err := provider.Restore(ctx); err != nil {
		logger.Warn(ctx, "session not restored", "error", err)
	}

	app.Run(ctx)
	return nil
}

func newSaver(ctx context.Context, cfg *config.Config) (storage.Saver, error) {
	if cfg.UseS3() {
		return storage.NewS3Saver(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
		})
	}
	return storage.NewFileSaver(cfg.DownloadDir)
}
