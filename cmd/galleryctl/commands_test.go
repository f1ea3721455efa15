package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockimage/internal/client"
	"github.com/stockimage/internal/gallery"
)

func fiveRecords() []gallery.Record {
	titles := []string{"A", "B", "C", "D", "E"}
	records := make([]gallery.Record, len(titles))
	for i, title := range titles {
		records[i] = gallery.Record{ID: uint(i + 1), Title: title, UserID: 1, Order: i}
	}
	return records
}

func setupApp(t *testing.T, pageSize int) (*app, *[]gallery.OrderEntry) {
	t.Helper()
	var saved []gallery.OrderEntry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/images/1":
			json.NewEncoder(w).Encode(fiveRecords())
		case r.Method == http.MethodPut && r.URL.Path == "/api/images/rearrange":
			var body struct {
				Images []gallery.OrderEntry `json:"images"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			saved = body.Images
			w.Write([]byte(`{"message":"Images rearranged"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	return &app{
		client: client.New(srv.URL, &client.Session{Token: "t", UserID: 1}),
		store:  gallery.NewStore(pageSize),
		out:    &bytes.Buffer{},
	}, &saved
}

func savedTitles(t *testing.T, saved []gallery.OrderEntry) string {
	t.Helper()
	byID := map[uint]string{}
	for _, r := range fiveRecords() {
		byID[r.ID] = r.Title
	}
	out := make([]byte, len(saved))
	for _, entry := range saved {
		out[entry.Order] = byID[entry.ID][0]
	}
	return string(out)
}

func TestMoveCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "card drop", args: []string{"move", "2", "3"}, want: "ACBDE"},
		{name: "gap drop", args: []string{"move-gap", "1", "4"}, want: "BCADE"},
		{name: "page drop", args: []string{"move-page", "1", "2"}, want: "BCDAE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, saved := setupApp(t, 3)
			if _, err := a.run(context.Background(), tt.args); err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if got := savedTitles(t, *saved); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMoveUnknownImage(t *testing.T) {
	a, saved := setupApp(t, 3)
	action, err := a.run(context.Background(), []string{"move", "42", "1"})
	if err == nil {
		t.Fatalf("expected error for unknown image")
	}
	if action != "save image order" || len(*saved) != 0 {
		t.Fatalf("unexpected action %q or save %v", action, *saved)
	}
}

func TestDeleteFailureIsGeneric(t *testing.T) {
	a, _ := setupApp(t, 3)
	action, err := a.run(context.Background(), []string{"delete", "9"})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if msg := notification(action, err); msg != "Failed to delete image. Please try again." {
		t.Fatalf("unexpected notification %q", msg)
	}
}

func TestUsageErrors(t *testing.T) {
	a, _ := setupApp(t, 3)
	for _, args := range [][]string{{"move", "1"}, {"title"}, {"bogus"}} {
		if _, err := a.run(context.Background(), args); !errors.Is(err, errUsage) {
			t.Fatalf("expected usage error for %v, got %v", args, err)
		}
	}
}

func TestLocalFailuresAreReportedAsIs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{name: "position past the end", args: []string{"move", "2", "99"}, target: gallery.ErrIndexOutOfRange},
		{name: "missing page", args: []string{"move-page", "2", "9"}, target: gallery.ErrPageOutOfRange},
		{name: "unknown image", args: []string{"move", "42", "1"}, target: errUnknownImage},
		{name: "bad arguments", args: []string{"move", "x", "1"}, target: errUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, saved := setupApp(t, 3)
			action, err := a.run(context.Background(), tt.args)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if len(*saved) != 0 {
				t.Fatalf("expected nothing saved, got %v", *saved)
			}
			msg := notification(action, err)
			if msg == client.Notify(action, err) || msg != err.Error() {
				t.Fatalf("expected the local error to be shown, got %q", msg)
			}
		})
	}
}

func TestMissingUploadFileIsReportedAsIs(t *testing.T) {
	a, _ := setupApp(t, 3)
	action, err := a.run(context.Background(), []string{"upload", "-title", "A", "/nonexistent/photo.png"})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if msg := notification(action, err); msg != err.Error() {
		t.Fatalf("expected file error to be shown, got %q", msg)
	}
}
