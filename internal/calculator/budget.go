package calculator

// Budget is the result of comparing an order total against the per-order ceiling.
type Budget struct {
	Total   int64
	Ceiling int64

	// Remaining is Ceiling - Total; it is negative when the order is over budget.
	Remaining int64
}

// CheckBudget compares total against ceiling.
func CheckBudget(total, ceiling int64) Budget {
	return Budget{
		Total:     total,
		Ceiling:   ceiling,
		Remaining: ceiling - total,
	}
}

// OverBudget reports whether the total strictly exceeds the ceiling.
func (b Budget) OverBudget() bool {
	return b.Total > b.Ceiling
}

// Oversum is the amount by which the total exceeds the ceiling (0 when within budget).
func (b Budget) Oversum() int64 {
	if !b.OverBudget() {
		return 0
	}
	return b.Total - b.Ceiling
}

// Oversum is shorthand for CheckBudget(total, ceiling).Oversum().
func Oversum(total, ceiling int64) int64 {
	return CheckBudget(total, ceiling).Oversum()
}
