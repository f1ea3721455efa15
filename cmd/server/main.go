package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockimage/internal/config"
	"github.com/stockimage/internal/db"
	"github.com/stockimage/internal/handler"
	"github.com/stockimage/internal/router"
	"github.com/stockimage/internal/service"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.UsesDefaultSecret() {
		log.Printf("WARNING: using the built-in development secret, set JWT_SECRET and SESSION_SECRET before deploying")
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := db.EnsureUser(db.DB, cfg.SeedUserEmail, cfg.SeedPassword); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	ctx := context.Background()
	storage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	var mailer service.Mailer = service.LogMailer{}
	if cfg.Mail.Enabled() {
		mailer = service.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.FromName, cfg.Mail.FromEmail)
	} else {
		log.Printf("SMTP_HOST not set, reset emails will be logged only")
	}

	users := service.NewUserService(db.DB, service.NewTokenIssuer(cfg.JWTSecret), mailer, cfg.SiteBaseURL)
	images := service.NewImageService(db.DB, storage)
	api := handler.NewAPI(db.DB, users, images, cfg.MaxUploadBytes)

	uploadDir := cfg.UploadDir
	if cfg.Minio.Enabled() {
		uploadDir = ""
	}

	// 设置 Gin 服务器
	r := router.SetupRouter(api, router.Options{
		SessionSecret:  cfg.SessionSecret,
		UploadDir:      uploadDir,
		UploadURLPath:  cfg.UploadURLPath,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("failed to shut down server: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to run server: %v", err)
		}
	}
}

func newStorage(ctx context.Context, cfg config.AppConfig) (service.Storage, error) {
	if cfg.Minio.Enabled() {
		m := cfg.Minio
		log.Printf("storing images in bucket %s at %s", m.Bucket, m.Endpoint)
		return service.NewMinioStorage(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL, m.PublicURL)
	}
	return service.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath)
}
