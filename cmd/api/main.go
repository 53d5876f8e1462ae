package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-label-api/internal/application/admin"
	"github.com/go-label-api/internal/application/otp"
	"github.com/go-label-api/internal/application/signin"
	"github.com/go-label-api/internal/application/tag"
	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/config"
	firebaseinfra "github.com/go-label-api/internal/infrastructure/firebase"
	jwtinfra "github.com/go-label-api/internal/infrastructure/jwt"
	s3infra "github.com/go-label-api/internal/infrastructure/s3"
	"github.com/go-label-api/internal/infrastructure/smtp"
	"github.com/go-label-api/internal/infrastructure/sns"
	"github.com/go-label-api/internal/metrics"
	"github.com/go-label-api/internal/pkg/logger"
	"github.com/go-label-api/internal/pkg/retry"
	"github.com/go-label-api/internal/storage"
	transporthttp "github.com/go-label-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	lg := logger.Setup(cfg.AppEnv, cfg.LogLevel)
	if envErr != nil {
		log.Info().Msg("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = lg.WithContext(ctx)

	app, err := firebaseinfra.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase")
	}
	identity, err := firebaseinfra.NewDelegate(ctx, app)
	if err != nil {
		log.Fatal().Err(err).Msg("identity delegate")
	}

	repos, err := storage.Open(ctx, cfg, app)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Warn().Err(err).Msg("close storage")
		}
	}()
	sessionStore, err := repos.SessionStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("open verification session store")
	}

	m := metrics.New()
	tokens, err := jwtinfra.NewProvider(cfg, jwtinfra.WithRecorder(m))
	if err != nil {
		log.Fatal().Err(err).Msg("session token provider")
	}
	cookies, err := jwtinfra.NewCookieCodec(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("session cookie codec")
	}

	coord := verification.NewCoordinator(sessionStore, verification.Config{
		CodeLength: cfg.OTPCodeLength,
		TTL:        cfg.OTPTTL,
	}, verification.WithRecorder(m))
	sweeper := verification.NewSweeper(sessionStore, cfg.OTPSweepInterval, verification.WithSweepRecorder(m))
	go sweeper.Run(ctx)

	otpDeps := otp.ServiceDeps{
		Coordinator: coord,
		Mailer:      smtp.NewMailer(cfg),
		Retry:       retry.DefaultPolicy(),
	}
	// SMS stays disabled rather than failing startup; phone codes then answer 502.
	if sender, err := sns.NewSender(ctx, cfg); err == nil {
		otpDeps.SMSSender = sender
	} else {
		log.Warn().Err(err).Msg("SNS sender not available")
	}
	otpSvc := otp.NewService(otpDeps)

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 client")
	}

	tagSvc := tag.NewService(tag.ServiceDeps{
		TagRepo:       repos.Tags,
		Confirmations: coord,
		Images:        s3infra.NewStore(s3Client, cfg.S3BucketName),
		PublicBaseURL: cfg.PublicBaseURL,
	})
	adminSvc := admin.NewService(admin.ServiceDeps{
		AdminRepo: repos.Admins,
		Tokens:    tokens,
	})
	if err := adminSvc.SeedSuperadmin(ctx, cfg.SuperadminUsername, cfg.SuperadminPassword, cfg.SuperadminEmail); err != nil {
		log.Fatal().Err(err).Msg("seed superadmin")
	}
	signinSvc := signin.NewService(signin.ServiceDeps{
		TagRepo:  repos.Tags,
		UserRepo: repos.Users,
		OTP:      otpSvc,
		Sessions: coord,
		Identity: identity,
		Tokens:   tokens,
	})

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		OTP:     otpSvc,
		Tags:    tagSvc,
		Admins:  adminSvc,
		SignIn:  signinSvc,
		Tokens:  tokens,
		Cookies: cookies,
		Metrics: m.Handler(),
		Logger:  lg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}
	log.Info().Msg("server stopped")
}
