package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, r Request) error
	Get(ctx context.Context, id string) (Request, error)
	// Update persists r only if the stored version still equals
	// expectedVersion, returning ErrConcurrentUpdate otherwise.
	Update(ctx context.Context, r Request, expectedVersion int) (Request, error)
	ListByEmployee(ctx context.Context, employeeID string, filter ListFilter) (ListResult, error)
	ListPendingForApprover(ctx context.Context, approverID string) ([]Request, error)
	ListApprovedInYear(ctx context.Context, employeeID string, year int) ([]Request, error)
	ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]Request, error)
}
