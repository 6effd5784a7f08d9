package nssf

import (
	"context"
	"time"
)

type ContributionRepository interface {
	Create(ctx context.Context, c Contribution) (Contribution, error)
	GetByID(ctx context.Context, id string) (Contribution, error)
	List(ctx context.Context, filter ContributionFilter) ([]Contribution, int64, error)

	// Update and UpdateStatus only apply while the stored status still equals
	// expected. A mismatch yields ErrConcurrentModification.
	Update(ctx context.Context, c Contribution, expected ContributionStatus) (Contribution, error)
	UpdateStatus(ctx context.Context, id string, expected, target ContributionStatus, processedAt time.Time) (Contribution, error)

	Delete(ctx context.Context, id string) error
}
