package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web dev"}, NormalizeTags([]string{" Go", "WEB DEV ", "go", "  "}))
	assert.Nil(t, NormalizeTags(nil))
	assert.Nil(t, NormalizeTags([]string{"", " "}))
}

func TestErrorValidation(t *testing.T) {
	e := NewValidationError("title", "title is a required field")
	e.Add("body", "body is malformed")
	e.Add("title", "title is too long")

	assert.False(t, e.Empty())
	assert.Equal(t, "validation failed: body: body is malformed; title: title is a required field, title is too long", e.Error())

	var target *ErrorValidation
	assert.True(t, errors.As(fmt.Errorf("create: %w", e), &target))
	assert.True(t, (&ErrorValidation{}).Empty())
}

func TestArticleStatus(t *testing.T) {
	a := &Article{}
	assert.Equal(t, StatusDraft, a.Status())

	a.LatestVersion = &ArticleVersion{Status: StatusPublished}
	assert.Equal(t, StatusPublished, a.Status())
}

func TestTagNames(t *testing.T) {
	v := &ArticleVersion{Tags: []Tag{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, []string{"a", "b"}, v.TagNames())
	assert.Nil(t, (&ArticleVersion{}).TagNames())
}

func TestErrorNotFound(t *testing.T) {
	assert.Equal(t, "article 3 not found", (&ErrorNotFound{Resource: "article", ID: 3}).Error())
}

func TestActorCanManage(t *testing.T) {
	assert.True(t, Actor{UserID: 1, Role: RoleWriter}.CanManage(1))
	assert.False(t, Actor{UserID: 1, Role: RoleWriter}.CanManage(2))
	assert.True(t, Actor{UserID: 1, Role: RoleEditor}.CanManage(2))
	assert.True(t, Actor{UserID: 1, Role: RoleAdmin}.CanManage(2))
	assert.False(t, Actor{}.CanManage(0))
}
