package order

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyInput = errors.New("no order ids supplied")
)

// PartialDeleteError reports a bulk delete that failed after the item phase
// completed. Item rows are gone but order rows remain; retrying the order
// phase alone is safe and cannot reintroduce duplicate items.
type PartialDeleteError struct {
	CompletedPhase string
	Err            error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("bulk delete failed after %s phase: %v", e.CompletedPhase, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

// BulkDeleter removes orders in two phases: child item rows first, then the
// order rows, because referential integrity points from items to orders.
// The phases are independently atomic; there is no cross-phase transaction.
type BulkDeleter struct {
	repo Repository
}

func NewBulkDeleter(repo Repository) *BulkDeleter { return &BulkDeleter{repo: repo} }

// DeleteOrders returns the number of order rows removed. A phase-1 failure
// means zero orders were removed; a phase-2 failure surfaces as
// *PartialDeleteError.
func (d *BulkDeleter) DeleteOrders(ctx context.Context, orderIDs []string) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, ErrEmptyInput
	}

	if _, err := d.repo.DeleteItemsForOrders(ctx, orderIDs); err != nil {
		return 0, fmt.Errorf("delete order items (no orders removed): %w", err)
	}

	deleted, err := d.repo.DeleteOrders(ctx, orderIDs)
	if err != nil {
		return 0, &PartialDeleteError{CompletedPhase: "items", Err: err}
	}
	return deleted, nil
}
