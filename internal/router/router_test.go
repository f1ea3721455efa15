package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockimage/internal/db"
	"github.com/stockimage/internal/handler"
	"github.com/stockimage/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T, uploadDir string, origins []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	storage, err := service.NewLocalStorage(uploadDir, "/uploads")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	users := service.NewUserService(gdb, service.NewTokenIssuer("test-secret"), service.LogMailer{}, "http://localhost:5173")
	api := handler.NewAPI(gdb, users, service.NewImageService(gdb, storage), 0)

	return SetupRouter(api, Options{
		SessionSecret: "test-secret",
		UploadDir:     uploadDir,
		UploadURLPath: "/uploads",
		CORSOrigins:   origins,
	})
}

func TestSetupRouterServesUploads(t *testing.T) {
	uploadDir := t.TempDir()
	fileName := "example.txt"
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, fileName), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := setupTestRouter(t, uploadDir, nil)

	req := httptest.NewRequest(http.MethodGet, "/uploads/"+fileName, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestImageRoutesAreProtected(t *testing.T) {
	r := setupTestRouter(t, t.TempDir(), nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/images"},
		{http.MethodGet, "/api/images/1"},
		{http.MethodPost, "/api/images/upload"},
		{http.MethodPut, "/api/images/rearrange"},
		{http.MethodPut, "/api/images/edit/1"},
		{http.MethodPut, "/api/images/replace/1"},
		{http.MethodDelete, "/api/images/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := setupTestRouter(t, t.TempDir(), []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/images/rearrange", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials to be allowed, got %q", got)
	}
}

func TestPing(t *testing.T) {
	r := setupTestRouter(t, t.TempDir(), nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
