package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stockimage/internal/db"
	"github.com/stockimage/internal/gallery"
	"github.com/stockimage/internal/service"
)

type rearrangeRequest struct {
	Images []gallery.OrderEntry `json:"images"`
}

type editRequest struct {
	Title string `json:"title" form:"title"`
}

// ListImages returns the caller's images in display order. With a page query
// parameter only that page is returned.
func (a *API) ListImages(c *gin.Context) {
	a.listImages(c, currentUserID(c))
}

// ListUserImages returns the images of the user in the path, which must be the
// caller.
func (a *API) ListUserImages(c *gin.Context) {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	if userID != currentUserID(c) {
		respondError(c, http.StatusForbidden, "Forbidden")
		return
	}
	a.listImages(c, userID)
}

func (a *API) listImages(c *gin.Context, userID uint) {
	if c.Query("page") == "" {
		items, err := a.images.List(userID)
		if err != nil {
			log.Printf("[images] list failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Fetch error")
			return
		}
		c.JSON(http.StatusOK, imagesPayload(items))
		return
	}

	result, err := a.images.ListPage(userID, service.ImageFilter{
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), gallery.DefaultPageSize),
	})
	if err != nil {
		log.Printf("[images] list page failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Fetch error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      imagesPayload(result.Items),
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
	})
}

// UploadImages stores a batch of images; the n-th title belongs to the n-th file.
func (a *API) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid upload")
		return
	}

	headers := form.File["images"]
	titles := form.Value["title"]
	if len(headers) != len(titles) {
		respondError(c, http.StatusBadRequest, "Mismatch between number of images and titles")
		return
	}

	files, err := readUploads(headers, a.maxUploadBytes)
	if err != nil {
		handleImageError(c, err, "Upload error")
		return
	}

	items, err := a.images.Upload(c.Request.Context(), currentUserID(c), titles, files)
	if err != nil {
		handleImageError(c, err, "Upload error")
		return
	}

	c.JSON(http.StatusCreated, imagesPayload(items))
}

// EditImage updates the title and optionally the file of an image.
func (a *API) EditImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image id")
		return
	}

	var payload editRequest
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	var file *service.UploadFile
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if header, err := c.FormFile("image"); err == nil {
			upload, err := readUpload(header, a.maxUploadBytes)
			if err != nil {
				handleImageError(c, err, "Edit error")
				return
			}
			file = &upload
		}
	}

	item, err := a.images.Edit(c.Request.Context(), currentUserID(c), id, payload.Title, file)
	if err != nil {
		handleImageError(c, err, "Edit error")
		return
	}

	c.JSON(http.StatusOK, imagePayload(*item))
}

// ReplaceImage swaps the file behind an image.
func (a *API) ReplaceImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image id")
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Image file is required")
		return
	}
	upload, err := readUpload(header, a.maxUploadBytes)
	if err != nil {
		handleImageError(c, err, "Replace error")
		return
	}

	item, err := a.images.Replace(c.Request.Context(), currentUserID(c), id, upload)
	if err != nil {
		handleImageError(c, err, "Replace error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Image replaced successfully",
		"imageUrl":     item.ImageURL,
		"thumbnailUrl": item.ThumbnailURL,
		"image":        imagePayload(*item),
	})
}

// DeleteImage removes an image and its files.
func (a *API) DeleteImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image id")
		return
	}

	if err := a.images.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		handleImageError(c, err, "Delete error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// RearrangeImages saves the order of the caller's images in one request.
func (a *API) RearrangeImages(c *gin.Context) {
	var payload rearrangeRequest
	if !bindJSON(c, &payload, "Invalid order payload") {
		return
	}

	if err := a.images.Rearrange(currentUserID(c), payload.Images); err != nil {
		handleImageError(c, err, "Rearrange error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Images rearranged"})
}

func handleImageError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrImageNotFound):
		respondError(c, http.StatusNotFound, "Image not found")
	case errors.Is(err, service.ErrTitleMismatch):
		respondError(c, http.StatusBadRequest, "Mismatch between number of images and titles")
	case errors.Is(err, service.ErrTitleRequired):
		respondError(c, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrImageMissing):
		respondError(c, http.StatusBadRequest, "Image file is required")
	case errors.Is(err, service.ErrUnsupportedImage):
		respondError(c, http.StatusBadRequest, "Only image files are allowed")
	case errors.Is(err, service.ErrDuplicateImage):
		respondError(c, http.StatusBadRequest, "Image listed more than once")
	case errors.Is(err, service.ErrImageTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "Image dimensions are too large")
	case errors.Is(err, errUploadTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "Image is too large")
	default:
		log.Printf("[images] %s: %v", strings.ToLower(fallback), err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func imagePayload(item db.Image) gin.H {
	return gin.H{
		"id":           item.ID,
		"title":        item.Title,
		"imageUrl":     item.ImageURL,
		"thumbnailUrl": item.ThumbnailURL,
		"userId":       item.UserID,
		"order":        item.SortOrder,
		"width":        item.Width,
		"height":       item.Height,
		"createdAt":    item.CreatedAt,
		"updatedAt":    item.UpdatedAt,
	}
}

func imagesPayload(items []db.Image) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, imagePayload(item))
	}
	return out
}
