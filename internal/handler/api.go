package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockimage/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	users          *service.UserService
	images         *service.ImageService
	maxUploadBytes int64
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, users *service.UserService, images *service.ImageService, maxUploadBytes int64) *API {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &API{
		db:             gdb,
		users:          users,
		images:         images,
		maxUploadBytes: maxUploadBytes,
	}
}

// Ping 健康检查，同时确认数据库可用
func (a *API) Ping(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		log.Printf("[ping] database unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
