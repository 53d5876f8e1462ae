// Command qrgen creates a batch of inactive tags and uploads their QR images,
// the same way the admin generate endpoint does.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"github.com/go-label-api/internal/application/tag"
	"github.com/go-label-api/internal/config"
	firebaseinfra "github.com/go-label-api/internal/infrastructure/firebase"
	s3infra "github.com/go-label-api/internal/infrastructure/s3"
	"github.com/go-label-api/internal/pkg/logger"
	"github.com/go-label-api/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openGenerator).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openGenerator wires the tag service against the configured backend. Tag
// generation needs no Firebase app unless Firestore is selected.
func openGenerator(ctx context.Context, cfg *config.Config) (generator, func() error, error) {
	logger.Setup(cfg.AppEnv, cfg.LogLevel)
	var app *firebase.App
	if cfg.PersistenceBackend == storage.BackendFirestore {
		a, err := firebaseinfra.NewApp(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		app = a
	}
	repos, err := storage.Open(ctx, cfg, app)
	if err != nil {
		return nil, nil, err
	}
	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		_ = repos.Close()
		return nil, nil, err
	}
	svc := tag.NewService(tag.ServiceDeps{
		TagRepo:       repos.Tags,
		Images:        s3infra.NewStore(s3Client, cfg.S3BucketName),
		PublicBaseURL: cfg.PublicBaseURL,
	})
	return svc, repos.Close, nil
}
