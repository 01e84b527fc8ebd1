package livestock

import "context"

type Repository interface {
	ListAll(ctx context.Context) ([]*Animal, error)
}
