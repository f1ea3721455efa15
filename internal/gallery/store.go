package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSaveInFlight is returned when Save is called while a previous save has
// not resolved yet.
var ErrSaveInFlight = errors.New("gallery: order save already in progress")

// Fetcher loads the current user's records from the backing service.
type Fetcher interface {
	ListImages(ctx context.Context) ([]Record, error)
}

// OrderSaver persists a full order payload in one request.
type OrderSaver interface {
	SaveOrder(ctx context.Context, entries []OrderEntry) error
}

// Store is the in-memory ordered collection of one user's images together
// with the active page of its paginated view. It belongs to a single session.
type Store struct {
	mu       sync.Mutex
	items    []Record
	pageSize int
	page     int
	saving   bool
}

// NewStore creates an empty store showing pageSize records per page.
func NewStore(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{pageSize: pageSize, page: 1}
}

// Load replaces the collection with records sorted by their order field.
func (s *Store) Load(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = SortByOrder(records)
	s.clampPage()
}

// Refresh fetches the collection from f and loads it.
func (s *Store) Refresh(ctx context.Context, f Fetcher) error {
	records, err := f.ListImages(ctx)
	if err != nil {
		return fmt.Errorf("fetch images: %w", err)
	}
	s.Load(records)
	return nil
}

// Items returns a copy of the display sequence.
func (s *Store) Items() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) PageSize() int {
	return s.pageSize
}

// ActivePage returns the 1-indexed page currently shown.
func (s *Store) ActivePage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Store) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageCount(len(s.items), s.pageSize)
}

// SetPage switches the active page.
func (s *Store) SetPage(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 || page > PageCount(len(s.items), s.pageSize) {
		return fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}
	s.page = page
	return nil
}

// PageItems returns the records of the active page.
func (s *Store) PageItems() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end := PageBounds(s.page, s.pageSize, len(s.items))
	return clone(s.items[start:end])
}

// GlobalIndex translates a card position on the active page into an index of
// the whole sequence.
func (s *Store) GlobalIndex(local int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageStart(s.page, s.pageSize) + local
}

// IndexOf returns the position of the record with id, or -1.
func (s *Store) IndexOf(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id)
}

// Append adds freshly uploaded records to the end of the sequence.
func (s *Store) Append(records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, records...)
}

// Remove drops the record with id. It reports whether it was present.
func (s *Store) Remove(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexOf(id)
	if index < 0 {
		return false
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.clampPage()
	return true
}

// Update replaces the content fields of the record with the same id. The
// position and order of the record are kept.
func (s *Store) Update(record Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexOf(record.ID)
	if index < 0 {
		return false
	}
	current := &s.items[index]
	current.Title = record.Title
	if record.ImageURL != "" {
		current.ImageURL = record.ImageURL
	}
	if record.ThumbnailURL != "" {
		current.ThumbnailURL = record.ThumbnailURL
	}
	if record.Width > 0 && record.Height > 0 {
		current.Width = record.Width
		current.Height = record.Height
	}
	return true
}

// Move applies a card drop within the sequence.
func (s *Store) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Move(s.items, from, to)
	if err != nil {
		return err
	}
	s.items = next
	return nil
}

// MoveToGap applies a drop on an insertion gap within the sequence.
func (s *Store) MoveToGap(from, gap int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := MoveToGap(s.items, from, gap)
	if err != nil {
		return err
	}
	s.items = next
	return nil
}

// MoveToPage applies a drop on a page control and switches to that page.
func (s *Store) MoveToPage(from, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := MoveToPage(s.items, from, page, s.pageSize)
	if err != nil {
		return err
	}
	s.items = next
	s.page = page
	return nil
}

// Saving reports whether an order save is in flight.
func (s *Store) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Save sends the current display order through saver. The payload is the
// sequence as it is when Save is called; reorders made while the request is in
// flight are kept in memory and need another Save. On failure the in-memory
// sequence is left untouched.
func (s *Store) Save(ctx context.Context, saver OrderSaver) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.saving = true
	entries := OrderEntries(s.items)
	s.mu.Unlock()

	err := saver.SaveOrder(ctx, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	saved := make(map[uint]int, len(entries))
	for _, entry := range entries {
		saved[entry.ID] = entry.Order
	}
	for i := range s.items {
		if order, ok := saved[s.items[i].ID]; ok {
			s.items[i].Order = order
		}
	}
	return nil
}

func (s *Store) indexOf(id uint) int {
	for i, record := range s.items {
		if record.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) clampPage() {
	if pages := PageCount(len(s.items), s.pageSize); s.page > pages {
		s.page = pages
	}
	if s.page < 1 {
		s.page = 1
	}
}
