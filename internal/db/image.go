package db

import "gorm.io/gorm"

// Image 定义用户上传的图片记录。SortOrder 即展示顺序，保存排序时整体重算。
type Image struct {
	gorm.Model
	UserID       uint   `gorm:"not null;index"`
	Title        string `gorm:"not null"`
	ImageURL     string `gorm:"not null"`
	ThumbnailURL string
	StorageKey   string
	ThumbnailKey string
	ContentType  string
	Width        int
	Height       int
	SortOrder    int `gorm:"default:0;index"`
}
