package gallery

import (
	"context"
	"errors"
	"testing"
)

type recordingSaver struct {
	calls   int
	entries []OrderEntry
	err     error
	block   chan struct{}
	started chan struct{}
}

func (r *recordingSaver) SaveOrder(ctx context.Context, entries []OrderEntry) error {
	r.calls++
	r.entries = entries
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		<-r.block
	}
	return r.err
}

type staticFetcher struct {
	records []Record
	err     error
}

func (f staticFetcher) ListImages(context.Context) ([]Record, error) {
	return f.records, f.err
}

func newLetterStore(t *testing.T, names string, pageSize int) *Store {
	t.Helper()
	store := NewStore(pageSize)
	store.Load(letters(names))
	return store
}

func TestStoreRefreshSortsByOrder(t *testing.T) {
	store := NewStore(3)
	err := store.Refresh(context.Background(), staticFetcher{records: []Record{
		{ID: 1, Title: "C", Order: 2},
		{ID: 2, Title: "A", Order: 0},
		{ID: 3, Title: "B", Order: 1},
	}})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := titles(store.Items()); got != "ABC" {
		t.Fatalf("expected ABC, got %s", got)
	}

	failing := staticFetcher{err: errors.New("boom")}
	if err := store.Refresh(context.Background(), failing); err == nil {
		t.Fatalf("expected refresh error")
	}
	if got := titles(store.Items()); got != "ABC" {
		t.Fatalf("failed refresh changed items: %s", got)
	}
}

func TestStorePageItems(t *testing.T) {
	store := newLetterStore(t, "ABCDE", 3)
	if got := titles(store.PageItems()); got != "ABC" {
		t.Fatalf("expected ABC, got %s", got)
	}
	if err := store.SetPage(2); err != nil {
		t.Fatalf("set page failed: %v", err)
	}
	if got := titles(store.PageItems()); got != "DE" {
		t.Fatalf("expected DE, got %s", got)
	}
	if store.GlobalIndex(1) != 4 {
		t.Fatalf("expected global index 4, got %d", store.GlobalIndex(1))
	}
	if err := store.SetPage(3); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("expected ErrPageOutOfRange, got %v", err)
	}
}

func TestStoreRemoveClampsPage(t *testing.T) {
	store := newLetterStore(t, "ABCD", 3)
	if err := store.SetPage(2); err != nil {
		t.Fatalf("set page failed: %v", err)
	}
	if !store.Remove(4) {
		t.Fatalf("expected record to be removed")
	}
	if store.ActivePage() != 1 {
		t.Fatalf("expected active page 1, got %d", store.ActivePage())
	}
	if store.Remove(42) {
		t.Fatalf("expected unknown id to be ignored")
	}
}

func TestStoreUpdateKeepsPosition(t *testing.T) {
	store := newLetterStore(t, "ABC", 3)
	if !store.Update(Record{ID: 2, Title: "Z", ImageURL: "/uploads/z.png"}) {
		t.Fatalf("expected update to apply")
	}
	items := store.Items()
	if titles(items) != "AZC" {
		t.Fatalf("expected AZC, got %s", titles(items))
	}
	if items[1].ImageURL != "/uploads/z.png" || items[1].Order != 1 {
		t.Fatalf("unexpected record after update: %+v", items[1])
	}
}

func TestGestureCardDropScenario(t *testing.T) {
	store := newLetterStore(t, "ABCDE", 3)
	gesture := NewGesture(store)

	tx, err := gesture.Begin(1)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if tx.ImageID != 2 || tx.SourceIndex != 1 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if gesture.State() != GestureDragging {
		t.Fatalf("expected dragging, got %s", gesture.State())
	}
	if err := gesture.Hover(OnCard(2)); err != nil {
		t.Fatalf("hover failed: %v", err)
	}
	if gesture.State() != GestureHovering {
		t.Fatalf("expected hovering, got %s", gesture.State())
	}
	if err := gesture.Drop(OnCard(2)); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if gesture.State() != GestureIdle {
		t.Fatalf("expected idle after drop, got %s", gesture.State())
	}
	if got := titles(store.Items()); got != "ACBDE" {
		t.Fatalf("expected ACBDE, got %s", got)
	}
}

func TestGesturePageDropSwitchesPage(t *testing.T) {
	store := newLetterStore(t, "ABCDE", 3)
	gesture := NewGesture(store)

	if _, err := gesture.Begin(0); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := gesture.Drop(OnPage(2)); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if got := titles(store.Items()); got != "BCDAE" {
		t.Fatalf("expected BCDAE, got %s", got)
	}
	if store.ActivePage() != 2 {
		t.Fatalf("expected page 2, got %d", store.ActivePage())
	}
}

func TestGestureAbandonLeavesSequence(t *testing.T) {
	store := newLetterStore(t, "ABCDE", 3)
	gesture := NewGesture(store)

	if _, err := gesture.Begin(3); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	gesture.Abandon()
	if _, ok := gesture.Transaction(); ok {
		t.Fatalf("expected no active transaction")
	}

	if _, err := gesture.Begin(3); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := gesture.Drop(DropTarget{}); err != nil {
		t.Fatalf("drop outside targets failed: %v", err)
	}
	if got := titles(store.Items()); got != "ABCDE" {
		t.Fatalf("expected ABCDE, got %s", got)
	}
	if err := gesture.Drop(OnCard(0)); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("expected ErrNotDragging, got %v", err)
	}
}

func TestStoreDropRejectsStaleTransaction(t *testing.T) {
	store := newLetterStore(t, "ABCDE", 3)
	gesture := NewGesture(store)

	if _, err := gesture.Begin(1); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	store.Remove(1)
	if err := gesture.Drop(OnCard(0)); !errors.Is(err, ErrStaleDrag) {
		t.Fatalf("expected ErrStaleDrag, got %v", err)
	}
	if got := titles(store.Items()); got != "BCDE" {
		t.Fatalf("expected BCDE, got %s", got)
	}
}

func TestStoreSaveRewritesOrder(t *testing.T) {
	store := newLetterStore(t, "ABCD", 2)
	if err := store.Move(3, 0); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	saver := &recordingSaver{}
	if err := store.Save(context.Background(), saver); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saver.calls != 1 {
		t.Fatalf("expected one request, got %d", saver.calls)
	}
	if len(saver.entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(saver.entries))
	}
	expectedIDs := []uint{4, 1, 2, 3}
	for i, entry := range saver.entries {
		if entry.ID != expectedIDs[i] || entry.Order != i {
			t.Fatalf("entry %d: got %+v", i, entry)
		}
	}
	for i, record := range store.Items() {
		if record.Order != i {
			t.Fatalf("record %s has order %d, expected %d", record.Title, record.Order, i)
		}
	}
}

func TestStoreSaveFailureKeepsSequence(t *testing.T) {
	store := newLetterStore(t, "ABC", 3)
	if err := store.Move(0, 2); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	saver := &recordingSaver{err: errors.New("network down")}
	if err := store.Save(context.Background(), saver); err == nil {
		t.Fatalf("expected save error")
	}
	items := store.Items()
	if titles(items) != "BCA" {
		t.Fatalf("expected BCA to be kept, got %s", titles(items))
	}
	if items[0].Order != 1 {
		t.Fatalf("order field should be untouched on failure, got %d", items[0].Order)
	}
	if store.Saving() {
		t.Fatalf("expected saving flag to be cleared")
	}
}

func TestStoreSaveInFlightRefusesSecondSave(t *testing.T) {
	store := newLetterStore(t, "ABC", 3)
	saver := &recordingSaver{block: make(chan struct{}), started: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		done <- store.Save(context.Background(), saver)
	}()
	<-saver.started

	if err := store.Save(context.Background(), &recordingSaver{}); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}
	if err := store.Move(2, 0); err != nil {
		t.Fatalf("reorder during save failed: %v", err)
	}

	close(saver.block)
	if err := <-done; err != nil {
		t.Fatalf("save failed: %v", err)
	}

	items := store.Items()
	if titles(items) != "CAB" {
		t.Fatalf("expected CAB, got %s", titles(items))
	}
	if items[0].Order != 2 || items[1].Order != 0 {
		t.Fatalf("expected saved orders from the snapshot, got %+v", items)
	}
}
