package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/stockimage/internal/config"
	"github.com/stockimage/internal/db"
)

func main() {
	cfg := config.Load()

	var email, password string
	flag.StringVar(&email, "email", cfg.SeedUserEmail, "account email")
	flag.StringVar(&password, "password", cfg.SeedPassword, "account password")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("email 和 password 不能为空")
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	if err := db.EnsureUser(db.DB, email, password); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("用户已就绪:", db.NormalizeEmail(email))
}
