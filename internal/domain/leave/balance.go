package leave

// ComputeBalance projects the yearly ledger from approved requests. Requests
// count toward the year their start date falls in.
func ComputeBalance(entitlements map[string]float64, requests []Request, year int) []Balance {
	if entitlements == nil {
		entitlements = DefaultEntitlements
	}
	used := map[string]float64{}
	for _, r := range requests {
		if r.Status != StatusApproved || r.StartDate.Year() != year {
			continue
		}
		used[r.LeaveType] += r.TotalDays
	}

	out := make([]Balance, 0, len(Types))
	for _, leaveType := range Types {
		entitled, ok := entitlements[leaveType]
		if !ok {
			entitled = DefaultEntitlements[leaveType]
		}
		remaining := entitled - used[leaveType]
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, Balance{
			LeaveType: leaveType,
			Entitled:  entitled,
			Used:      used[leaveType],
			Remaining: remaining,
		})
	}
	return out
}
