package leave

import "testing"

func approved(leaveType string, start int, days float64) Request {
	return Request{LeaveType: leaveType, Status: StatusApproved, StartDate: date(start, 3, 1), TotalDays: days}
}

func TestComputeBalanceClampsRemaining(t *testing.T) {
	requests := []Request{approved(TypeCasual, 2025, 3)}
	b, _ := balanceFor(ComputeBalance(nil, requests, 2025), TypeCasual)
	if b.Entitled != 12 || b.Used != 3 || b.Remaining != 9 {
		t.Fatalf("expected 12/3/9, got %+v", b)
	}

	requests = append(requests, approved(TypeCasual, 2025, 10))
	b, _ = balanceFor(ComputeBalance(nil, requests, 2025), TypeCasual)
	if b.Used != 13 || b.Remaining != 0 {
		t.Fatalf("expected used 13 remaining 0, got %+v", b)
	}
}

func TestComputeBalanceIgnoresOtherYearsAndStatuses(t *testing.T) {
	pending := approved(TypeSick, 2025, 2)
	pending.Status = StatusPending
	rejected := approved(TypeSick, 2025, 1)
	rejected.Status = StatusRejected
	requests := []Request{approved(TypeSick, 2024, 4), pending, rejected, approved(TypeSick, 2025, 0.5)}

	b, _ := balanceFor(ComputeBalance(nil, requests, 2025), TypeSick)
	if b.Used != 0.5 || b.Remaining != 11.5 {
		t.Fatalf("expected 0.5 used, got %+v", b)
	}
}

func TestComputeBalanceCustomEntitlements(t *testing.T) {
	balances := ComputeBalance(map[string]float64{TypeAnnual: 25}, nil, 2025)
	if len(balances) != len(Types) {
		t.Fatalf("expected every type, got %d", len(balances))
	}
	annual, _ := balanceFor(balances, TypeAnnual)
	casual, _ := balanceFor(balances, TypeCasual)
	if annual.Entitled != 25 || casual.Entitled != 12 {
		t.Fatalf("unexpected entitlements annual=%v casual=%v", annual.Entitled, casual.Entitled)
	}
}

func balanceFor(balances []Balance, leaveType string) (Balance, bool) {
	for _, b := range balances {
		if b.LeaveType == leaveType {
			return b, true
		}
	}
	return Balance{}, false
}
