package finance

import "strings"

// Category is a fertilizer price category.
type Category string

const (
	CategoryNPK           Category = "npk"
	CategoryUrea          Category = "urea"
	CategoryDAP           Category = "dap"
	CategoryPotassium     Category = "potassium"
	CategoryMicronutrient Category = "micronutrient"
)

// classifierRules map keywords to price categories. Order matters: product
// names can match several categories ("NPK superphosphate" contains both
// "npk" and "phosph"), and the earliest rule wins, so this stays an ordered
// slice rather than a map.
var classifierRules = []struct {
	keywords []string
	category Category
}{
	{[]string{"npk", "compound"}, CategoryNPK},
	{[]string{"urea", "nitrogen"}, CategoryUrea},
	{[]string{"dap", "phosph"}, CategoryDAP},
	{[]string{"potassium", "sulfate"}, CategoryPotassium},
	{[]string{"micro", "zinc", "boron"}, CategoryMicronutrient},
}

// Classify maps a fertilizer's free-text name to a price category by
// case-insensitive substring match, first rule wins. Unknown products are
// conservatively priced as compound (NPK) fertilizer.
func Classify(name string) Category {
	folded := strings.ToLower(name)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.category
			}
		}
	}
	return CategoryNPK
}
