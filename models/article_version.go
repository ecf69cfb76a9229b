package models

import (
	"time"

	"gorm.io/gorm"
)

type ArticleStatus string

const (
	StatusDraft           ArticleStatus = "draft"
	StatusPublished       ArticleStatus = "published"
	StatusArchivedVersion ArticleStatus = "archived_version"
)

// ArticleVersion is one committed save of an article. Versions are never
// edited after creation except for their status.
type ArticleVersion struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	ArticleID     uint           `json:"article_id" gorm:"not null"`
	Article       *Article       `json:"article,omitempty" gorm:"foreignKey:ArticleID"`
	VersionNumber int            `json:"version_number" gorm:"not null"`
	Title         string         `json:"title" gorm:"not null"`
	Content       string         `json:"content" gorm:"type:text"`
	Thumbnail     string         `json:"thumbnail"`
	CategoryID    *uint          `json:"category_id"`
	Category      *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Status        ArticleStatus  `json:"status" gorm:"default:'draft'"`
	Tags          []Tag          `json:"tags" gorm:"many2many:article_version_tags;"`
	PublishedAt   *time.Time     `json:"published_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TagNames lists the version's tag names in stored order.
func (v *ArticleVersion) TagNames() []string {
	if len(v.Tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(v.Tags))
	for _, t := range v.Tags {
		names = append(names, t.Name)
	}
	return names
}
