package draft

import "context"

// Repository describes draft-status persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context) (Draft, error)
	Save(ctx context.Context, d Draft) error
}
