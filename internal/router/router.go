package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stockimage/internal/handler"
)

const sessionName = "stockimage_session"

// Options 路由需要的外部配置
type Options struct {
	SessionSecret  string
	UploadDir      string
	UploadURLPath  string
	CORSOrigins    []string
	MaxUploadBytes int64
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.Default()
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 上传文件
	if opts.UploadDir != "" {
		urlPath := "/" + strings.Trim(opts.UploadURLPath, "/")
		if urlPath == "/" {
			urlPath = "/uploads"
		}
		r.Static(urlPath, opts.UploadDir)
	}

	r.GET("/ping", api.Ping)

	users := r.Group("/api/users")
	{
		users.POST("/register", api.Register)
		users.POST("/login", api.Login)
		users.POST("/logout", api.Logout)
		users.POST("/forgot-password", api.ForgotPassword)
		users.POST("/reset-password/:token", api.ResetPassword)
	}

	images := r.Group("/api/images")
	images.Use(api.AuthRequired())
	{
		images.GET("", api.ListImages)
		images.POST("/upload", api.UploadImages)
		images.PUT("/rearrange", api.RearrangeImages)
		images.PUT("/edit/:id", api.EditImage)
		images.PUT("/replace/:id", api.ReplaceImage)
		images.DELETE("/:id", api.DeleteImage)
		images.GET("/:userId", api.ListUserImages)
	}

	return r
}
