package models

// Category classifies what a household reminder is about.
type Category string

const (
	CategoryRent     Category = "rent"
	CategoryHealth   Category = "health"
	CategoryPet      Category = "pet"
	CategoryFinance  Category = "finance"
	CategoryDocument Category = "document"
	CategoryMemorial Category = "memorial"
	CategoryOther    Category = "other"
)

var categories = map[Category]bool{
	CategoryRent:     true,
	CategoryHealth:   true,
	CategoryPet:      true,
	CategoryFinance:  true,
	CategoryDocument: true,
	CategoryMemorial: true,
	CategoryOther:    true,
}

func (c Category) Valid() bool {
	return categories[c]
}

// Categories lists every known category, for statistics buckets.
func Categories() []Category {
	return []Category{
		CategoryRent, CategoryHealth, CategoryPet, CategoryFinance,
		CategoryDocument, CategoryMemorial, CategoryOther,
	}
}
