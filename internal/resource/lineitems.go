package resource

import (
	"context"
	"fmt"

	"github.com/Makepad-fr/nexo/internal/model"
)

// FillPrices copies the catalogue unit price into every line that has none,
// the way picking an item in the form does. Each item is fetched once.
func FillPrices(ctx context.Context, items *Repo[model.Item], lines []model.LineItem) error {
	cache := map[int64]float64{}
	for i := range lines {
		if lines[i].UnitPrice > 0 || lines[i].ItemID == 0 {
			continue
		}
		price, ok := cache[lines[i].ItemID]
		if !ok {
			it, err := items.Get(ctx, lines[i].ItemID)
			if err != nil {
				return fmt.Errorf("item %d: %w", lines[i].ItemID, err)
			}
			price = it.UnitPrice
			cache[lines[i].ItemID] = price
		}
		lines[i].UnitPrice = price
	}
	return nil
}
