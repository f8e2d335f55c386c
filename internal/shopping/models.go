package shopping

// AggregatedLine is one row of a shopping list: a distinct (name, unit)
// ingredient identity with the total amount summed across every selected
// recipe that uses it.
type AggregatedLine struct {
	Name  string `json:"name"`
	Unit  string `json:"measurement_unit"`
	Total int64  `json:"amount"`
}
