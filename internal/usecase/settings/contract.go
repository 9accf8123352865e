package settings

import (
	"context"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Repository defines the storage contract for the runtime configuration.
type Repository interface {
	Load(ctx context.Context) (domain.SystemConfig, error)
	Save(ctx context.Context, sc domain.SystemConfig) error
}
