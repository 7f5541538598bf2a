package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Record, error)
	GetByEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) (Record, error)
	// Create fails with ErrAlreadyCheckedIn when the (employee, date) pair exists.
	Create(ctx context.Context, r Record) (Record, error)
	Update(ctx context.Context, r Record, expectedVersion int) (Record, error)
	History(ctx context.Context, employeeID string, filter HistoryFilter) (HistoryResult, error)
	ListByDate(ctx context.Context, workDate time.Time) ([]Record, error)
}
