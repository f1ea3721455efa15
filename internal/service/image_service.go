package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stockimage/internal/db"
	"github.com/stockimage/internal/gallery"
	"gorm.io/gorm"
)

var (
	ErrImageNotFound  = errors.New("image not found")
	ErrImageMissing   = errors.New("image file is required")
	ErrTitleRequired  = errors.New("image title is required")
	ErrTitleMismatch  = errors.New("mismatch between number of images and titles")
	ErrDuplicateImage = errors.New("image listed more than once")
)

// ImageService handles per-user image CRUD and ordering.
type ImageService struct {
	db      *gorm.DB
	storage Storage
	titles  *bluemonday.Policy
}

// ImageFilter describes pagination for listing images.
type ImageFilter struct {
	Page    int
	PerPage int
}

// ImageListResult aggregates paginated image results.
type ImageListResult struct {
	Items      []db.Image
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// UploadFile is one uploaded file read into memory.
type UploadFile struct {
	Filename string
	Data     []byte
}

// NewImageService creates an ImageService instance.
func NewImageService(gdb *gorm.DB, storage Storage) *ImageService {
	return &ImageService{db: gdb, storage: storage, titles: bluemonday.StrictPolicy()}
}

// List returns all of a user's images in display order.
func (s *ImageService) List(userID uint) ([]db.Image, error) {
	var items []db.Image
	if err := s.ordered(s.db.Where("user_id = ?", userID)).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return items, nil
}

// ListPage returns one page of a user's images in display order.
func (s *ImageService) ListPage(userID uint, filter ImageFilter) (ImageListResult, error) {
	result := ImageListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, gallery.DefaultPageSize),
	}

	query := s.db.Model(&db.Image{}).Where("user_id = ?", userID)
	if err := query.Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("count images: %w", err)
	}

	result.TotalPages = gallery.PageCount(int(result.Total), result.PerPage)
	offset := gallery.PageStart(result.Page, result.PerPage)

	if err := s.ordered(query).
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("list images: %w", err)
	}

	return result, nil
}

// Get fetches an image owned by userID.
func (s *ImageService) Get(userID, id uint) (*db.Image, error) {
	var item db.Image
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &item, nil
}

// Upload stores a batch of files and creates one record per file. titles and
// files are matched by position; the new records are appended after the
// user's existing images.
func (s *ImageService) Upload(ctx context.Context, userID uint, titles []string, files []UploadFile) ([]db.Image, error) {
	if len(files) == 0 {
		return nil, ErrImageMissing
	}
	if len(titles) != len(files) {
		return nil, ErrTitleMismatch
	}

	cleaned := make([]string, len(titles))
	for i, title := range titles {
		cleaned[i] = s.cleanTitle(title)
		if cleaned[i] == "" {
			return nil, ErrTitleRequired
		}
	}

	stored := make([]storedFile, 0, len(files))
	for _, file := range files {
		sf, err := s.storeFile(ctx, file)
		if err != nil {
			s.discard(ctx, stored...)
			return nil, err
		}
		stored = append(stored, sf)
	}

	var items []db.Image
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Image{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}

		items = make([]db.Image, len(stored))
		for i, sf := range stored {
			items[i] = db.Image{
				UserID:    userID,
				Title:     cleaned[i],
				SortOrder: int(count) + i,
			}
			sf.apply(&items[i])
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		s.discard(ctx, stored...)
		return nil, fmt.Errorf("create images: %w", err)
	}

	return items, nil
}

// Edit updates the title of an image and, when file is given, its content.
func (s *ImageService) Edit(ctx context.Context, userID, id uint, title string, file *UploadFile) (*db.Image, error) {
	cleaned := s.cleanTitle(title)
	if cleaned == "" {
		return nil, ErrTitleRequired
	}

	item, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	previous := storedFile{key: item.StorageKey, thumbKey: item.ThumbnailKey}
	var replacement *storedFile
	if file != nil {
		sf, err := s.storeFile(ctx, *file)
		if err != nil {
			return nil, err
		}
		replacement = &sf
		sf.apply(item)
	}
	item.Title = cleaned

	if err := s.db.Save(item).Error; err != nil {
		if replacement != nil {
			s.discard(ctx, *replacement)
		}
		return nil, fmt.Errorf("update image: %w", err)
	}
	if replacement != nil {
		s.discard(ctx, previous)
	}
	return item, nil
}

// Replace swaps the stored file of an image and removes the old one. Title
// and order are kept.
func (s *ImageService) Replace(ctx context.Context, userID, id uint, file UploadFile) (*db.Image, error) {
	item, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	previous := storedFile{key: item.StorageKey, thumbKey: item.ThumbnailKey}
	sf, err := s.storeFile(ctx, file)
	if err != nil {
		return nil, err
	}
	sf.apply(item)

	if err := s.db.Save(item).Error; err != nil {
		s.discard(ctx, sf)
		return nil, fmt.Errorf("replace image: %w", err)
	}
	s.discard(ctx, previous)
	return item, nil
}

// Delete removes an image record and its stored files.
func (s *ImageService) Delete(ctx context.Context, userID, id uint) error {
	item, err := s.Get(userID, id)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(item).Error; err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	s.discard(ctx, storedFile{key: item.StorageKey, thumbKey: item.ThumbnailKey})
	return nil
}

// Rearrange writes the given order values. Every id must belong to userID;
// otherwise nothing is written.
func (s *ImageService) Rearrange(userID uint, entries []gallery.OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.ID]; dup {
			return ErrDuplicateImage
		}
		seen[entry.ID] = struct{}{}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			res := tx.Model(&db.Image{}).
				Where("id = ? AND user_id = ?", entry.ID, userID).
				Update("sort_order", entry.Order)
			if res.Error != nil {
				return fmt.Errorf("rearrange images: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %d", ErrImageNotFound, entry.ID)
			}
		}
		return nil
	})
}

func (s *ImageService) ordered(query *gorm.DB) *gorm.DB {
	return query.Order("sort_order asc").Order("id asc")
}

func (s *ImageService) cleanTitle(title string) string {
	return strings.TrimSpace(html.UnescapeString(s.titles.Sanitize(strings.TrimSpace(title))))
}

type storedFile struct {
	url         string
	key         string
	thumbURL    string
	thumbKey    string
	contentType string
	width       int
	height      int
}

func (sf storedFile) apply(item *db.Image) {
	item.ImageURL = sf.url
	item.StorageKey = sf.key
	item.ThumbnailURL = sf.thumbURL
	item.ThumbnailKey = sf.thumbKey
	item.ContentType = sf.contentType
	item.Width = sf.width
	item.Height = sf.height
}

func (s *ImageService) storeFile(ctx context.Context, file UploadFile) (storedFile, error) {
	if len(file.Data) == 0 {
		return storedFile{}, ErrImageMissing
	}
	info, err := inspectImage(file.Data)
	if err != nil {
		return storedFile{}, err
	}
	thumb, err := makeThumbnail(file.Data)
	if err != nil {
		return storedFile{}, err
	}

	sf := storedFile{
		key:         newStorageKey(formatExtensions[info.Format]),
		contentType: formatContentTypes[info.Format],
		width:       info.Width,
		height:      info.Height,
	}
	sf.thumbKey = strings.TrimSuffix(sf.key, formatExtensions[info.Format]) + "_thumb.jpg"

	sf.url, err = s.storage.Put(ctx, sf.key, bytes.NewReader(file.Data), int64(len(file.Data)), sf.contentType)
	if err != nil {
		return storedFile{}, fmt.Errorf("store image: %w", err)
	}
	sf.thumbURL, err = s.storage.Put(ctx, sf.thumbKey, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
	if err != nil {
		s.discard(ctx, storedFile{key: sf.key})
		return storedFile{}, fmt.Errorf("store thumbnail: %w", err)
	}
	return sf, nil
}

// discard removes stored files; failures are logged since the record change
// they belong to has already been decided.
func (s *ImageService) discard(ctx context.Context, files ...storedFile) {
	for _, sf := range files {
		for _, key := range []string{sf.key, sf.thumbKey} {
			if key == "" {
				continue
			}
			if err := s.storage.Remove(ctx, key); err != nil {
				log.Printf("[storage] failed to remove %s: %v", key, err)
			}
		}
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}
