package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/example/matjar/internal/models"
)

// OrderSource is one origin of customer orders. Each adapter translates its
// own table shape into the unified view and is responsible for filtering to
// exactly the (store, phone) pair it was asked for.
type OrderSource interface {
	ListByCustomer(ctx context.Context, storeID uuid.UUID, phone string) ([]models.UnifiedOrder, error)
}

// UnifiedOrderService merges the heterogeneous order origins into one
// most-recent-first listing. It never receives a client-supplied phone; the
// phone always comes from a validated session.
type UnifiedOrderService struct {
	sources []OrderSource
}

// NewUnifiedOrderService constructs the service over its origin adapters.
func NewUnifiedOrderService(sources ...OrderSource) *UnifiedOrderService {
	return &UnifiedOrderService{sources: sources}
}

// ListForCustomer returns one page of the customer's orders across all
// sources, ordered by created_at descending, plus the total count. The sort
// breaks ties on order id so repeated refreshes return an identical sequence.
func (s *UnifiedOrderService) ListForCustomer(ctx context.Context, storeID uuid.UUID, phone string, offset, limit int) ([]models.UnifiedOrder, int, error) {
	var merged []models.UnifiedOrder
	for _, source := range s.sources {
		orders, err := source.ListByCustomer(ctx, storeID, phone)
		if err != nil {
			return nil, 0, err
		}
		merged = append(merged, orders...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].OrderID > merged[j].OrderID
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	total := len(merged)

	if offset >= total {
		return []models.UnifiedOrder{}, total, nil
	}
	merged = merged[offset:]
	if limit > 0 && limit < len(merged) {
		merged = merged[:limit]
	}

	return merged, total, nil
}

// TotalsForCustomer reports how many orders the customer has placed across
// all sources and their combined value. Used by the admin customer listing.
func (s *UnifiedOrderService) TotalsForCustomer(ctx context.Context, storeID uuid.UUID, phone string) (int, float64, error) {
	count := 0
	sum := float64(0)
	for _, source := range s.sources {
		orders, err := source.ListByCustomer(ctx, storeID, phone)
		if err != nil {
			return 0, 0, err
		}
		count += len(orders)
		for _, o := range orders {
			sum += o.TotalSAR
		}
	}
	return count, sum, nil
}
