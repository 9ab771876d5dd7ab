package core

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Summary holds the aggregates driving the running total display and the
// per-category bar chart.
type Summary struct {
	Total      Money            `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// Aggregate computes the total amount and the per-category sums over
// records. Categories appear in first-seen order so chart labels stay
// stable across renders of the same list.
func Aggregate(records []Expense) Summary {
	var s Summary
	index := make(map[string]int, len(records))
	for _, e := range records {
		s.Total = s.Total.Add(e.Amount)
		i, ok := index[e.Category]
		if !ok {
			i = len(s.ByCategory)
			index[e.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: e.Category})
		}
		s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(e.Amount)
	}
	return s
}
