package models

// Category describes one spending/income category. The catalog is served by
// the backend; DefaultCategories is the built-in set used when it is
// unreachable, matching the ids the backend seeds.
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Icon  string          `json:"icon"`
	Color string          `json:"color"`
	Type  TransactionType `json:"type"`
}

// CategoryCatalog is the catalog response shape, split by transaction type.
type CategoryCatalog struct {
	Income  []Category `json:"income"`
	Expense []Category `json:"expense"`
}

func DefaultCategories() CategoryCatalog {
	return CategoryCatalog{
		Expense: []Category{
			{ID: "food", Name: "Food", Icon: "🍜", Color: "#FF6B6B", Type: TransactionTypeExpense},
			{ID: "transport", Name: "Transport", Icon: "🚇", Color: "#4ECDC4", Type: TransactionTypeExpense},
			{ID: "shopping", Name: "Shopping", Icon: "🛍️", Color: "#FFD93D", Type: TransactionTypeExpense},
			{ID: "entertainment", Name: "Entertainment", Icon: "🎮", Color: "#95E1D3", Type: TransactionTypeExpense},
			{ID: "housing", Name: "Housing", Icon: "🏠", Color: "#6C5CE7", Type: TransactionTypeExpense},
			{ID: "other", Name: "Other", Icon: "📝", Color: "#C0C0C0", Type: TransactionTypeExpense},
		},
		Income: []Category{
			{ID: "salary", Name: "Salary", Icon: "💰", Color: "#00B894", Type: TransactionTypeIncome},
			{ID: "bonus", Name: "Bonus", Icon: "🎁", Color: "#FDCB6E", Type: TransactionTypeIncome},
			{ID: "investment", Name: "Investment", Icon: "📈", Color: "#0984E3", Type: TransactionTypeIncome},
			{ID: "other_income", Name: "Other", Icon: "📝", Color: "#C0C0C0", Type: TransactionTypeIncome},
		},
	}
}

// Find looks a category up by type and id, falling back to a generic bucket
// so display code never dereferences a missing category.
func (c CategoryCatalog) Find(t TransactionType, id string) Category {
	set := c.Expense
	if t == TransactionTypeIncome {
		set = c.Income
	}
	for _, cat := range set {
		if cat.ID == id {
			return cat
		}
	}
	return Category{ID: id, Name: "Other", Icon: "📝", Color: "#C0C0C0", Type: t}
}
