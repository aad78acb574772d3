package repository

import (
	"context"

	"github.com/sabucaps/brazilian/internal/entity"
)

// VocabularyRepository is the read-mostly catalog the engine merges progress into.
type VocabularyRepository interface {
	// ListAll returns every item in catalog order.
	ListAll(ctx context.Context) ([]entity.VocabularyItem, error)
	GetByID(ctx context.Context, id string) (*entity.VocabularyItem, error)
	Create(ctx context.Context, item *entity.VocabularyItem) (*entity.VocabularyItem, error)
	Delete(ctx context.Context, id string) error
}
