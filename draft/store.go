package draft

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"

	"editorial-cms/models"
)

// ContentStore persists articles. Create and Update return
// *models.ErrorValidation when the submitted fields are rejected; Fetch
// returns *models.ErrorNotFound for an unknown id.
type ContentStore interface {
	Create(ctx context.Context, authorID uint, s Snapshot) (uint, error)
	Update(ctx context.Context, articleID uint, s Snapshot) error
	Fetch(ctx context.Context, articleID uint) (*models.Article, error)
}
