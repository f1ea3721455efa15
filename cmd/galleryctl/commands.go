package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stockimage/internal/client"
	"github.com/stockimage/internal/gallery"
)

var (
	errUsage        = errors.New("invalid arguments, run galleryctl -h for usage")
	errUnknownImage = errors.New("no image with that id")
)

// localErrors 是本地参数或序列操作的失败，直接展示给用户
var localErrors = []error{
	errUsage,
	errUnknownImage,
	gallery.ErrIndexOutOfRange,
	gallery.ErrPageOutOfRange,
	gallery.ErrInvalidPageSize,
	gallery.ErrStaleDrag,
	gallery.ErrNotDragging,
	gallery.ErrBadTarget,
	gallery.ErrSaveInFlight,
}

// notification 返回失败时展示的消息。远端失败统一由 client.Notify 处理。
func notification(action string, err error) string {
	for _, target := range localErrors {
		if errors.Is(err, target) {
			return err.Error()
		}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return err.Error()
	}
	return client.Notify(action, err)
}

type app struct {
	client *client.Client
	store  *gallery.Store
	out    io.Writer
}

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// run 执行一个子命令，返回用于提示的动作名称
func (a *app) run(ctx context.Context, args []string) (string, error) {
	name, rest := args[0], args[1:]
	switch name {
	case "register":
		if len(rest) < 2 {
			return "register", errUsage
		}
		phone := ""
		if len(rest) > 2 {
			phone = rest[2]
		}
		if err := a.client.Register(ctx, rest[0], phone, rest[1]); err != nil {
			return "register", err
		}
		fmt.Fprintln(a.out, "Registered. You can log in now.")
	case "login":
		if len(rest) != 2 {
			return "log in", errUsage
		}
		if err := a.client.Login(ctx, rest[0], rest[1]); err != nil {
			return "log in", err
		}
		fmt.Fprintln(a.out, "Logged in.")
	case "logout":
		if err := a.client.Logout(ctx); err != nil {
			return "log out", err
		}
		fmt.Fprintln(a.out, "Logged out.")
	case "forgot":
		if len(rest) != 1 {
			return "send reset link", errUsage
		}
		if err := a.client.ForgotPassword(ctx, rest[0]); err != nil {
			return "send reset link", err
		}
		fmt.Fprintln(a.out, "Reset link sent to email.")
	case "reset":
		if len(rest) != 2 {
			return "reset password", errUsage
		}
		if err := a.client.ResetPassword(ctx, rest[0], rest[1]); err != nil {
			return "reset password", err
		}
		fmt.Fprintln(a.out, "Password reset. You can log in now.")
	case "list":
		return "load images", a.list(ctx, rest)
	case "upload":
		return "upload images", a.upload(ctx, rest)
	case "title":
		return "update title", a.title(ctx, rest)
	case "replace":
		return "replace image", a.replace(ctx, rest)
	case "delete":
		return "delete image", a.delete(ctx, rest)
	case "move", "move-gap", "move-page":
		return "save image order", a.move(ctx, name, rest)
	default:
		return name, errUsage
	}
	return name, nil
}

func (a *app) list(ctx context.Context, args []string) error {
	if err := a.store.Refresh(ctx, a.client); err != nil {
		return err
	}
	if len(args) > 0 {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return errUsage
		}
		if err := a.store.SetPage(page); err != nil {
			return err
		}
	}
	a.printPage()
	return nil
}

func (a *app) printPage() {
	if a.store.Len() == 0 {
		fmt.Fprintln(a.out, "No images yet.")
		return
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d images)\n", a.store.ActivePage(), a.store.PageCount(), a.store.Len())
	for local, record := range a.store.PageItems() {
		fmt.Fprintf(a.out, "%4d  id=%-6d %s  %s\n", a.store.GlobalIndex(local)+1, record.ID, record.Title, record.ImageURL)
	}
}

func (a *app) upload(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("upload", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var titles stringList
	flags.Var(&titles, "title", "title for the next file, repeat once per file")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	files := make([]client.File, 0, flags.NArg())
	for _, path := range flags.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, client.File{Name: filepath.Base(path), Data: data})
	}

	records, err := a.client.Upload(ctx, titles, files)
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Fprintf(a.out, "Uploaded id=%d %s\n", record.ID, record.Title)
	}
	return nil
}

func (a *app) title(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	record, err := a.client.EditTitle(ctx, id, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated id=%d %s\n", record.ID, record.Title)
	return nil
}

func (a *app) replace(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	url, err := a.client.Replace(ctx, id, client.File{Name: filepath.Base(args[1]), Data: data})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Replaced id=%d %s\n", id, url)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.client.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted id=%d\n", id)
	return nil
}

// move 在本地序列上完成一次拖放，然后一次性保存全部顺序
func (a *app) move(ctx context.Context, kind string, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	dest, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}

	if err := a.store.Refresh(ctx, a.client); err != nil {
		return err
	}
	from := a.store.IndexOf(id)
	if from < 0 {
		return fmt.Errorf("%w: %d", errUnknownImage, id)
	}

	switch kind {
	case "move-gap":
		err = a.store.MoveToGap(from, dest-1)
	case "move-page":
		err = a.drag(from, gallery.OnPage(dest))
	default:
		err = a.drag(from, gallery.OnCard(dest-1))
	}
	if err != nil {
		return err
	}

	if err := a.store.Save(ctx, a.client); err != nil {
		return err
	}
	a.printPage()
	return nil
}

func (a *app) drag(from int, target gallery.DropTarget) error {
	gesture := gallery.NewGesture(a.store)
	if _, err := gesture.Begin(from); err != nil {
		return err
	}
	if err := gesture.Hover(target); err != nil {
		gesture.Abandon()
		return err
	}
	return gesture.Drop(target)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errUsage
	}
	return uint(id), nil
}
