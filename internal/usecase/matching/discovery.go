package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/tradeoverflow/trade-service/internal/domain"
)

// activeCategories returns every category currently holding at least
// one non-terminal order, by unioning the status index scans. A read
// failure here aborts the whole cycle: discovery is the prerequisite
// for everything that follows.
func (uc *Usecase) activeCategories(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, status := range domain.NonTerminalStatuses {
		categories, err := uc.store.QueryCategoriesByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("discovery: %w", err)
		}
		for _, category := range categories {
			seen[category] = struct{}{}
		}
	}

	active := make([]string, 0, len(seen))
	for category := range seen {
		active = append(active, category)
	}
	sort.Strings(active)
	return active, nil
}
