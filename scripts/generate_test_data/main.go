package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log"

	"github.com/stockimage/internal/config"
	"github.com/stockimage/internal/db"
	"github.com/stockimage/internal/service"
	"gorm.io/gorm"
)

type seedImage struct {
	title  string
	width  int
	height int
	tint   color.RGBA
}

var seedImages = []seedImage{
	{"Harbor at dawn", 1600, 900, color.RGBA{R: 240, G: 170, B: 90, A: 255}},
	{"Pine forest", 900, 1350, color.RGBA{R: 40, G: 110, B: 60, A: 255}},
	{"Desert dunes", 1500, 1000, color.RGBA{R: 220, G: 180, B: 120, A: 255}},
	{"Glacier lake", 1200, 1200, color.RGBA{R: 90, G: 170, B: 220, A: 255}},
	{"City lights", 1920, 1080, color.RGBA{R: 30, G: 30, B: 70, A: 255}},
	{"Street market", 1000, 1500, color.RGBA{R: 200, G: 80, B: 60, A: 255}},
	{"Morning fog", 1400, 1050, color.RGBA{R: 200, G: 200, B: 210, A: 255}},
	{"Old bridge", 1080, 1080, color.RGBA{R: 120, G: 100, B: 80, A: 255}},
	{"Lavender field", 1600, 1067, color.RGBA{R: 150, G: 120, B: 200, A: 255}},
	{"Lighthouse", 800, 1200, color.RGBA{R: 230, G: 230, B: 240, A: 255}},
	{"Autumn path", 1350, 900, color.RGBA{R: 210, G: 110, B: 40, A: 255}},
	{"Night sky", 1024, 1024, color.RGBA{R: 10, G: 20, B: 50, A: 255}},
	{"Coffee shop", 1200, 800, color.RGBA{R: 110, G: 75, B: 50, A: 255}},
	{"Mountain ridge", 2000, 900, color.RGBA{R: 100, G: 120, B: 140, A: 255}},
	{"Tulips", 900, 1200, color.RGBA{R: 230, G: 60, B: 110, A: 255}},
}

// 测试数据生成器：创建演示账号并上传一组不同比例的图片
func main() {
	cfg := config.Load()

	var email, password string
	flag.StringVar(&email, "email", "demo@example.com", "demo account email")
	flag.StringVar(&password, "password", "demo123", "demo account password")
	flag.Parse()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	storage, err := service.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath)
	if err != nil {
		log.Fatal("初始化存储失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	count, err := seed(context.Background(), db.DB, service.NewImageService(db.DB, storage), email, password)
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}
	fmt.Printf("测试数据生成完成！账号: %s (密码: %s)，图片: %d 张\n", email, password, count)
}

// seed 确保演示账号存在，并在其没有图片时上传全部示例图片
func seed(ctx context.Context, gdb *gorm.DB, images *service.ImageService, email, password string) (int, error) {
	if err := db.EnsureUser(gdb, email, password); err != nil {
		return 0, err
	}
	var user db.User
	if err := gdb.Where("email = ?", db.NormalizeEmail(email)).First(&user).Error; err != nil {
		return 0, err
	}

	existing, err := images.List(user.ID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		fmt.Println("图片已存在，跳过创建")
		return len(existing), nil
	}

	titles := make([]string, 0, len(seedImages))
	files := make([]service.UploadFile, 0, len(seedImages))
	for i, item := range seedImages {
		data, err := renderJPEG(item)
		if err != nil {
			return 0, err
		}
		titles = append(titles, item.title)
		files = append(files, service.UploadFile{Filename: fmt.Sprintf("seed-%02d.jpg", i+1), Data: data})
	}

	created, err := images.Upload(ctx, user.ID, titles, files)
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

func renderJPEG(item seedImage) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, item.width, item.height))
	for y := 0; y < item.height; y++ {
		shade := uint8(y * 80 / item.height)
		c := color.RGBA{
			R: item.tint.R - min(item.tint.R, shade),
			G: item.tint.G - min(item.tint.G, shade),
			B: item.tint.B - min(item.tint.B, shade),
			A: 255,
		}
		for x := 0; x < item.width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
