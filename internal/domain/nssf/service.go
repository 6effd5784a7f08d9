package nssf

import (
	"context"

	"github.com/shopspring/decimal"
)

type ContributionService interface {
	Create(ctx context.Context, req CreateContributionRequest) (ContributionResponse, error)
	Get(ctx context.Context, id string) (ContributionResponse, error)
	List(ctx context.Context, filter ContributionFilter) (ListContributionResponse, error)
	Update(ctx context.Context, req UpdateContributionRequest) (ContributionResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (ContributionResponse, error)
	Delete(ctx context.Context, id string) error
	Calculate(ctx context.Context, gross decimal.Decimal) (CalculationResponse, error)
}
