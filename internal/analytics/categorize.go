package analytics

import (
	"strings"

	"supportbot/internal/domain"
)

type categoryRule struct {
	category domain.Category
	keywords []string
}

// Declared order is the priority order: the first rule with any matching keyword wins.
var categoryRules = []categoryRule{
	{domain.CategoryShipping, []string{"shipping", "delivery", "track", "package", "arrive"}},
	{domain.CategoryReturns, []string{"return", "refund", "money back", "exchange"}},
	{domain.CategoryProduct, []string{"product", "item", "quality", "broken", "damaged", "specs", "details"}},
	{domain.CategoryAccount, []string{"account", "login", "password", "sign in", "register", "profile"}},
	{domain.CategoryPayment, []string{"payment", "credit card", "paypal", "charge", "billing", "invoice"}},
	{domain.CategoryGeneral, []string{"help", "support", "contact", "speak", "human", "agent"}},
}

// Categorize maps a query to a category by case-insensitive substring match.
func Categorize(query string) domain.Category {
	q := strings.ToLower(query)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}
