package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/config"
	"github.com/mkrylov/accountd/internal/db"
	"github.com/mkrylov/accountd/internal/handler"
	"github.com/mkrylov/accountd/internal/job"
	"github.com/mkrylov/accountd/internal/middleware"
	"github.com/mkrylov/accountd/internal/pkg/signer"
	"github.com/mkrylov/accountd/internal/repo"
	"github.com/mkrylov/accountd/internal/schedule"
	"github.com/mkrylov/accountd/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "accountd",
		Short: "account lifecycle API server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("app_url", cfg.AppURL),
	)

	userRepo := repo.NewUserRepo(conn)
	tokenRepo := repo.NewAccessTokenRepo(conn)
	resetRepo := repo.NewPasswordResetRepo(conn)

	linkSigner := signer.New([]byte(cfg.AppKey))
	mailSender := service.NewEmailSender(cfg.Mail)
	verifyTTL := time.Duration(cfg.VerifyTTLMinutes) * time.Minute
	resetTTL := time.Duration(cfg.ResetTTLMinutes) * time.Minute
	mailer := service.NewMailer(mailSender, linkSigner, cfg.AppURL, verifyTTL, resetTTL)
	events := service.NewLogSink()

	tokenService := service.NewTokenService(tokenRepo, userRepo)
	authService := service.NewAuthService(userRepo, tokenService, mailer, events)
	resetService := service.NewPasswordResetService(
		userRepo, resetRepo, mailer, events,
		time.Duration(cfg.ResetThrottleSeconds)*time.Second, resetTTL,
	)

	deps := handler.RouterDeps{
		Auth:              handler.NewAuthHandler(authService, resetService),
		Profile:           handler.NewProfileHandler(),
		Signer:            linkSigner,
		Authenticator:     tokenService,
		ThrottlePerMinute: cfg.ThrottlePerMinute,
	}

	engine, err := webapi.NewEngine(
		"/api",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewResetCleanupJob(resetService), "0 * * * *"); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
