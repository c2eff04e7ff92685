// Package suggestion picks sustainability advice for a garment description.
package suggestion

import (
	"strings"

	"ecoscan-relay/internal/pipeline/vision"
)

// Fallback is returned when no rule matches and for descriptions that do not
// name a garment.
const Fallback = "For this item, look for options made from sustainable, recycled, organic or second-hand " +
	"materials. Choosing low-impact materials makes a big difference."

// Rule is one row of the decision table. Keywords are matched as substrings
// of the lower-cased description.
type Rule struct {
	Group    string
	Keywords []string
	Advice   string
}

// Rules is evaluated top to bottom and the first match wins, so "calça jeans"
// is tested together with "jeans" before any later group.
var Rules = []Rule{
	{
		Group:    "tops",
		Keywords: []string{"camiseta", "blusa", "top", "shirt", "blouse"},
		Advice: "For this item, consider certified organic cotton, recycled cotton, or knits made from fibres " +
			"such as bamboo or Tencel™ Lyocell. These options reduce the environmental impact of farming and production.",
	},
	{
		Group:    "jeans",
		Keywords: []string{"calça jeans", "jeans", "denim"},
		Advice: "Look for jeans made with dry, ozone or laser washing processes to reduce water and chemical use. " +
			"Recycled or second-hand jeans are also excellent sustainable choices.",
	},
	{
		Group:    "dresses",
		Keywords: []string{"vestido", "saia", "dress", "skirt"},
		Advice: "Choose dresses or skirts made from natural materials such as linen, hemp or organic cotton, or from " +
			"recycled fabrics. Reuse and buying second-hand are great ways to be sustainable.",
	},
	{
		Group:    "outerwear",
		Keywords: []string{"jaqueta", "casaco", "blazer", "jacket", "coat"},
		Advice: "Consider jackets, coats or blazers made from recycled materials (such as polyester from PET bottles), " +
			"recycled wool, or bought second-hand. Durability and reuse are key here.",
	},
	{
		Group:    "footwear",
		Keywords: []string{"sapato", "tênis", "calçado", "shoe", "sneaker", "footwear"},
		Advice: "Consider footwear made from recycled materials (rubber, plastic), sustainable vegan materials " +
			"(mushroom leather, Piñatex), or responsibly sourced leather. Second-hand shoe shops are also an option.",
	},
	{
		Group:    "accessories",
		Keywords: []string{"bolsa", "mochila", "acessório", "bag", "backpack", "accessory"},
		Advice: "Look for bags, backpacks or accessories made from recycled materials, upcycled fabrics or sustainable " +
			"vegan materials. Durability and timeless design also contribute to sustainability.",
	},
	{
		Group:    "shorts",
		Keywords: []string{"shorts", "bermuda"},
		Advice: "Consider shorts made from organic cotton, linen or recycled materials. Second-hand pieces are a " +
			"practical and sustainable alternative.",
	},
}

// Suggest is total: every description yields one non-empty string.
func Suggest(description string) string {
	if vision.IsSentinel(description) || strings.TrimSpace(description) == "" {
		return Fallback
	}
	if rule, ok := Match(description); ok {
		return rule.Advice
	}
	return Fallback
}

// Match returns the first rule whose keywords occur in description.
func Match(description string) (Rule, bool) {
	lower := strings.ToLower(description)
	for _, rule := range Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}
