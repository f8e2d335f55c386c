package ingredient

// Ingredient is reference catalog data. Identity is the (name, unit) pair:
// "sugar" measured in grams and "sugar" measured in tablespoons are distinct
// catalog entries.
type Ingredient struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Unit string `json:"measurement_unit"`
}
