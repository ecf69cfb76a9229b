// Package events announces article lifecycle changes to other services.
package events

import (
	"context"
	"time"
)

const (
	ActionPublished = "published"
	ActionUpdated   = "updated"
)

type ArticleEvent struct {
	Action    string    `json:"action"`
	ArticleID uint      `json:"article_id"`
	VersionID uint      `json:"version_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event ArticleEvent) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, ArticleEvent) error { return nil }

func (Nop) Close() error { return nil }
