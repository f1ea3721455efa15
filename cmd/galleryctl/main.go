package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/stockimage/internal/client"
	"github.com/stockimage/internal/gallery"
)

func main() {
	_ = godotenv.Load()

	var (
		serverURL   string
		sessionPath string
		pageSize    int
	)
	flag.StringVar(&serverURL, "server", envDefault("STOCKIMAGE_URL", "http://localhost:5000"), "gallery API base URL")
	flag.StringVar(&sessionPath, "session", defaultSessionPath(), "file that keeps the login session")
	flag.IntVar(&pageSize, "page-size", gallery.DefaultPageSize, "images per page")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	session, err := client.LoadSession(sessionPath)
	if err != nil {
		log.Fatalf("failed to load session: %v", err)
	}

	a := &app{
		client: client.New(serverURL, session),
		store:  gallery.NewStore(pageSize),
		out:    os.Stdout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	action, err := a.run(ctx, flag.Args())
	if err != nil {
		log.Printf("%s: %v", action, err)
		fmt.Fprintln(os.Stderr, notification(action, err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: galleryctl [flags] <command> [args]

Commands:
  register <email> <password> [phone]
  login <email> <password>
  logout
  forgot <email>
  reset <token> <password>
  list [page]
  upload -title <title> [-title <title> ...] <file> [file ...]
  title <id> <title>
  replace <id> <file>
  delete <id>
  move <id> <position>        drop the image on the card at position
  move-gap <id> <gap>         drop the image into the gap before position gap
  move-page <id> <page>       drop the image on a page control

Flags:
`)
	flag.PrintDefaults()
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".stockimage-session.json"
	}
	return filepath.Join(dir, "stockimage", "session.json")
}
