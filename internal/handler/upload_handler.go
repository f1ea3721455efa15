package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/stockimage/internal/service"
)

var errUploadTooLarge = errors.New("uploaded file is too large")

// readUpload 读取单个上传文件到内存，并限制大小与类型
func readUpload(header *multipart.FileHeader, limit int64) (service.UploadFile, error) {
	if header.Size > limit {
		return service.UploadFile{}, errUploadTooLarge
	}
	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") && contentType != "application/octet-stream" {
		return service.UploadFile{}, service.ErrUnsupportedImage
	}

	file, err := header.Open()
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return service.UploadFile{}, errUploadTooLarge
	}

	return service.UploadFile{Filename: header.Filename, Data: data}, nil
}

func readUploads(headers []*multipart.FileHeader, limit int64) ([]service.UploadFile, error) {
	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := readUpload(header, limit)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
