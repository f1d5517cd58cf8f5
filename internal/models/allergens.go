package models

// AllergenNames maps upstream allergen codes to their Croatian names.
// A trailing '*' on a code in item data marks possible traces.
var AllergenNames = map[string]string{
	"A": "Gluten",
	"C": "Jaja",
	"F": "Soja",
	"G": "Mlijeko",
	"I": "Celer",
	"J": "Senf",
	"K": "Sezam",
	"L": "Sulfiti",
}
