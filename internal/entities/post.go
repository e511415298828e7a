package entities

import (
	"time"
)

type PostStatus string

const (
	PostStatusPublished PostStatus = "published"
	PostStatusDraft     PostStatus = "draft"
)

// Post is the content record created for one imported media item.
type Post struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:512" json:"title"`
	Body            string     `gorm:"type:text" json:"body"`
	Status          PostStatus `gorm:"size:20" json:"status"`
	PublishedAt     time.Time  `json:"published_at"`
	FeaturedAssetID *uint      `gorm:"index" json:"featured_asset_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Categories []Category `gorm:"many2many:post_categories;" json:"categories,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// Category is a destination-taxonomy term applied to imported posts.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:100" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}
