package core

import "time"

// FilterOptions describes a compound filter over a list of expenses. Zero
// values mean "no constraint": a zero time passes every record, an empty
// category or subcategory matches all.
type FilterOptions struct {
	Start       time.Time
	End         time.Time
	Category    string
	Subcategory string
}

// FilterExpenses returns the subsequence of records matching every present
// predicate. Predicates are conjunctive; the input slice is not modified and
// input order is preserved.
func FilterExpenses(records []Expense, opts FilterOptions) []Expense {
	out := make([]Expense, 0, len(records))
	for _, e := range records {
		if !opts.Start.IsZero() && e.CreatedAt.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && e.CreatedAt.After(opts.End) {
			continue
		}
		if opts.Category != "" && e.Category != opts.Category {
			continue
		}
		if opts.Subcategory != "" && e.Subcategory != opts.Subcategory {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DistinctCategories returns the distinct categories present in records, in
// first-seen order.
func DistinctCategories(records []Expense) []string {
	return distinct(records, func(e Expense) string { return e.Category })
}

// DistinctSubcategories returns the distinct subcategories present in
// records, in first-seen order. Deliberately not scoped per category: the
// two option sets are derived independently.
func DistinctSubcategories(records []Expense) []string {
	return distinct(records, func(e Expense) string { return e.Subcategory })
}

func distinct(records []Expense, key func(Expense) string) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, e := range records {
		k := key(e)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
