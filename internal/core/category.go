package core

import "strings"

// Category is an open label. The constants below are the ones offered by default.
type Category = string

const (
	CategoryFood          Category = "Food & Dining"
	CategoryBazar         Category = "Bazar & Groceries"
	CategoryTransport     Category = "Transportation"
	CategoryUtilities     Category = "Utilities"
	CategoryHousing       Category = "Housing"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategorySalary        Category = "Salary"
	CategoryInvestment    Category = "Investment"
	CategoryTransfer      Category = "Transfer"
	CategoryOther         Category = "Other"
	CategoryLending       Category = "Lending"
)

// RecommendedCategories returns the default labels, in the order they are offered.
func RecommendedCategories() []Category {
	return []Category{
		CategoryFood, CategoryBazar, CategoryTransport, CategoryUtilities,
		CategoryHousing, CategoryEntertainment, CategoryShopping, CategoryHealth,
		CategorySalary, CategoryInvestment, CategoryTransfer, CategoryOther,
		CategoryLending,
	}
}

// NormalizeCategory trims surrounding whitespace. Case is preserved.
func NormalizeCategory(c string) Category {
	return strings.TrimSpace(c)
}
