package leave

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// AdminResolver picks the admin who approves an escalated request.
type AdminResolver interface {
	ResolveAdmin(ctx context.Context, applicantID string) (string, error)
}

type AdminLister interface {
	ActiveAdmins(ctx context.Context) ([]string, error)
}

// Counter is a shared monotonically increasing sequence.
type Counter interface {
	Next(ctx context.Context, key string) (int64, error)
}

// FirstActiveAdmin always picks the earliest active admin.
type FirstActiveAdmin struct {
	Admins AdminLister
}

func (f FirstActiveAdmin) ResolveAdmin(ctx context.Context, applicantID string) (string, error) {
	candidates, err := adminCandidates(ctx, f.Admins, applicantID)
	if err != nil || len(candidates) == 0 {
		return "", err
	}
	return candidates[0], nil
}

// RoundRobinAdmin rotates through active admins within this process.
type RoundRobinAdmin struct {
	Admins AdminLister
	next   atomic.Uint64
}

func (r *RoundRobinAdmin) ResolveAdmin(ctx context.Context, applicantID string) (string, error) {
	candidates, err := adminCandidates(ctx, r.Admins, applicantID)
	if err != nil || len(candidates) == 0 {
		return "", err
	}
	n := r.next.Add(1) - 1
	return candidates[n%uint64(len(candidates))], nil
}

// SharedRoundRobinAdmin rotates using a counter shared between replicas.
// When the counter is unavailable it degrades to the first candidate.
type SharedRoundRobinAdmin struct {
	Admins  AdminLister
	Counter Counter
	Key     string
}

func (s SharedRoundRobinAdmin) ResolveAdmin(ctx context.Context, applicantID string) (string, error) {
	candidates, err := adminCandidates(ctx, s.Admins, applicantID)
	if err != nil || len(candidates) == 0 {
		return "", err
	}
	key := s.Key
	if key == "" {
		key = "leave:admin-rotation"
	}
	n, err := s.Counter.Next(ctx, key)
	if err != nil {
		slog.Warn("admin rotation counter failed", "err", err)
		return candidates[0], nil
	}
	if n < 1 {
		n = 1
	}
	return candidates[uint64(n-1)%uint64(len(candidates))], nil
}

// NewAdminResolver maps a configured strategy name onto a resolver. A nil
// counter keeps rotation in-process.
func NewAdminResolver(strategy string, admins AdminLister, counter Counter) AdminResolver {
	switch strategy {
	case "first":
		return FirstActiveAdmin{Admins: admins}
	default:
		if counter != nil {
			return SharedRoundRobinAdmin{Admins: admins, Counter: counter}
		}
		return &RoundRobinAdmin{Admins: admins}
	}
}

func adminCandidates(ctx context.Context, admins AdminLister, applicantID string) ([]string, error) {
	ids, err := admins.ActiveAdmins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != applicantID {
			out = append(out, id)
		}
	}
	return out, nil
}
