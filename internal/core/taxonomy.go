package core

// Taxonomy is the fixed category to subcategory lookup table. It is built
// once and injected wherever category pairs are validated or option lists
// are rendered, so the client and any future server-side validation share
// the same source of truth.
type Taxonomy struct {
	order []string
	subs  map[string][]string
}

// NewTaxonomy builds a taxonomy from ordered (category, subcategories)
// pairs. Order is preserved for display.
func NewTaxonomy(pairs []TaxonomyEntry) Taxonomy {
	t := Taxonomy{subs: make(map[string][]string, len(pairs))}
	for _, p := range pairs {
		if _, dup := t.subs[p.Category]; dup {
			continue
		}
		t.order = append(t.order, p.Category)
		t.subs[p.Category] = append([]string(nil), p.Subcategories...)
	}
	return t
}

// TaxonomyEntry is one category with its ordered subcategories.
type TaxonomyEntry struct {
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories"`
}

// Categories returns the categories in display order.
func (t Taxonomy) Categories() []string {
	return append([]string(nil), t.order...)
}

// Subcategories returns the sub-enumeration for a category.
func (t Taxonomy) Subcategories(category string) ([]string, bool) {
	subs, ok := t.subs[category]
	if !ok {
		return nil, false
	}
	return append([]string(nil), subs...), true
}

// ValidPair reports whether subcategory belongs to category's fixed
// sub-enumeration.
func (t Taxonomy) ValidPair(category, subcategory string) bool {
	subs, ok := t.subs[category]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == subcategory {
			return true
		}
	}
	return false
}

// Entries returns the full table in display order, for serving to the
// frontend.
func (t Taxonomy) Entries() []TaxonomyEntry {
	entries := make([]TaxonomyEntry, 0, len(t.order))
	for _, c := range t.order {
		entries = append(entries, TaxonomyEntry{Category: c, Subcategories: append([]string(nil), t.subs[c]...)})
	}
	return entries
}

// DefaultTaxonomy returns the application's fixed expense taxonomy.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy([]TaxonomyEntry{
		{"Food & Dining", []string{"Groceries", "Restaurants", "Coffee Shops"}},
		{"Transportation", []string{"Fuel", "Public Transit", "Car Maintenance"}},
		{"Housing", []string{"Rent", "Mortgage", "Utilities", "Home Repairs"}},
		{"Entertainment", []string{"Movies", "Music", "Streaming Services", "Events"}},
		{"Health & Fitness", []string{"Gym Memberships", "Medical Expenses", "Supplements"}},
		{"Shopping", []string{"Clothes", "Electronics", "Online Purchases"}},
		{"Travel", []string{"Flights", "Hotels", "Travel Insurance", "Vacation Activities"}},
		{"Education", []string{"Courses", "Books", "School Supplies", "Tuition"}},
		{"Personal Care", []string{"Haircuts", "Skincare", "Cosmetics"}},
		{"Insurance", []string{"Health", "Auto", "Home", "Life Insurance"}},
		{"Investments", []string{"Stocks", "Mutual Funds", "Retirement Savings"}},
		{"Gifts & Donations", []string{"Charity", "Gifts for Family and Friends"}},
		{"Utilities", []string{"Electricity", "Water", "Internet", "Phone"}},
		{"Miscellaneous", []string{"Anything that doesn't fit into other categories"}},
	})
}
