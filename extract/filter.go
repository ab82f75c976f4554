package extract

import (
	"strings"

	"github.com/use-agent/pagegrab/models"
)

// FilterByKeyword keeps the items whose MatchText contains keyword,
// case-insensitively. An empty keyword returns items unchanged.
func FilterByKeyword(items []models.ResourceItem, keyword string) []models.ResourceItem {
	if keyword == "" {
		return items
	}
	needle := strings.ToLower(keyword)

	kept := make([]models.ResourceItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.MatchText()), needle) {
			kept = append(kept, item)
		}
	}
	return kept
}
