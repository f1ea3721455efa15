package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret 仅用于本地开发，release 模式下拒绝使用。
const DefaultSessionSecret = "stockimage-dev-secret"

var ErrDefaultSecret = errors.New("JWT_SECRET or SESSION_SECRET must be set when GIN_MODE=release")

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SessionSecret  string
	JWTSecret      string
	GinMode        string
	UploadDir      string
	UploadURLPath  string
	SiteBaseURL    string
	CORSOrigins    []string
	MaxUploadBytes int64
	SeedUserEmail  string
	SeedPassword   string
	Mail           MailConfig
	Minio          MinioConfig
}

// MailConfig 描述发送密码重置邮件所需的 SMTP 参数。Host 为空时仅记录日志。
type MailConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
}

// Enabled 表示是否配置了可用的 SMTP 服务。
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// MinioConfig 描述可选的对象存储。Endpoint 为空时使用本地磁盘。
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Enabled 表示是否启用对象存储。
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	// .env 在生产环境中通常不存在
	_ = godotenv.Load()

	port := env("PORT", "5000")
	listenAddr := env("LISTEN_ADDR", fmt.Sprintf(":%s", port))
	sessionSecret := env("SESSION_SECRET", DefaultSessionSecret)

	maxUploadMB := envInt("MAX_UPLOAD_MB", 20)
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}

	fromEmail := env("MAIL_FROM_EMAIL", "")
	smtpUser := env("SMTP_USER", "")
	if fromEmail == "" {
		fromEmail = smtpUser
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   env("DATABASE_PATH", "stockimage.db"),
		SessionSecret:  sessionSecret,
		JWTSecret:      env("JWT_SECRET", sessionSecret),
		GinMode:        env("GIN_MODE", "release"),
		UploadDir:      env("UPLOAD_DIR", "uploads"),
		UploadURLPath:  env("UPLOAD_URL_PATH", "/uploads"),
		SiteBaseURL:    strings.TrimRight(env("SITE_BASE_URL", "http://localhost:5173"), "/"),
		CORSOrigins:    splitList(env("CORS_ORIGINS", "http://localhost:5173")),
		MaxUploadBytes: int64(maxUploadMB) << 20,
		SeedUserEmail:  env("SEED_USER_EMAIL", ""),
		SeedPassword:   env("SEED_USER_PASSWORD", ""),
		Mail: MailConfig{
			Host:      env("SMTP_HOST", ""),
			Port:      envInt("SMTP_PORT", 587),
			User:      smtpUser,
			Password:  env("SMTP_PASSWORD", ""),
			FromName:  env("MAIL_FROM_NAME", "Stock Image"),
			FromEmail: fromEmail,
		},
		Minio: MinioConfig{
			Endpoint:  env("MINIO_ENDPOINT", ""),
			AccessKey: env("MINIO_ACCESS_KEY", ""),
			SecretKey: env("MINIO_SECRET_KEY", ""),
			Bucket:    env("MINIO_BUCKET", ""),
			UseSSL:    env("MINIO_USE_SSL", "") == "true",
			PublicURL: strings.TrimRight(env("MINIO_PUBLIC_URL", ""), "/"),
		},
	}
}

// UsesDefaultSecret 表示令牌或会话签名仍在使用公开的开发密钥。
func (c AppConfig) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultSessionSecret || c.SessionSecret == DefaultSessionSecret
}

// Validate 拒绝在 release 模式下使用开发密钥。
func (c AppConfig) Validate() error {
	if c.GinMode == "release" && c.UsesDefaultSecret() {
		return ErrDefaultSecret
	}
	return nil
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(env(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
