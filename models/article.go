package models

import (
	"time"

	"gorm.io/gorm"
)

type Article struct {
	ID                 uint             `json:"id" gorm:"primarykey"`
	AuthorID           uint             `json:"author_id" gorm:"not null"`
	Author             User             `json:"author" gorm:"foreignKey:AuthorID"`
	Title              string           `json:"title" gorm:"not null"`
	PublishedVersionID *uint            `json:"published_version_id"`
	PublishedVersion   *ArticleVersion  `json:"published_version,omitempty" gorm:"foreignKey:PublishedVersionID"`
	LatestVersionID    *uint            `json:"latest_version_id"`
	LatestVersion      *ArticleVersion  `json:"latest_version,omitempty" gorm:"foreignKey:LatestVersionID"`
	Versions           []ArticleVersion `json:"versions,omitempty" gorm:"foreignKey:ArticleID"`
	// Counters are maintained by the store only.
	LikeCount    int            `json:"like_count" gorm:"default:0"`
	CommentCount int            `json:"comment_count" gorm:"default:0"`
	ViewCount    int            `json:"view_count" gorm:"default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Status reports the status of the latest version, or draft when the
// article has none yet.
func (a *Article) Status() ArticleStatus {
	if a.LatestVersion == nil {
		return StatusDraft
	}
	return a.LatestVersion.Status
}
