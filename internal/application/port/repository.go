package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRepository defines persistence operations for Bill on the backend
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	List(ctx context.Context) ([]*entity.Bill, error)
	ListByEmail(ctx context.Context, email string) ([]*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
