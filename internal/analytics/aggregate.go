package analytics

import (
	"sort"
	"time"

	"github.com/iho/storeledger/internal/domain"
)

// DayBucket sums completed sales of one calendar day.
type DayBucket struct {
	Count   int
	Revenue float64
	Profit  float64
}

// ProductStat sums completed sales of one product.
type ProductStat struct {
	Name         string
	SalesCount   int
	TotalProfit  float64
	TotalRevenue float64
}

// Aggregation is the unrounded result of grouping sales by day and product.
type Aggregation struct {
	Days     []DayBucket
	Count    int
	Revenue  float64
	Costs    float64
	Profit   float64
	Products []ProductStat
}

// Aggregate groups the completed transactions that fall inside w. Days are
// taken in loc; amounts are converted with conv.
func Aggregate(w Window, txs []*domain.Transaction, conv Converter, loc *time.Location) Aggregation {
	agg := Aggregation{Days: make([]DayBucket, w.Days())}
	if len(agg.Days) == 0 {
		return agg
	}

	productIdx := make(map[string]int)

	for _, tx := range txs {
		if !tx.IsCompleted() {
			continue
		}

		d := dayOf(tx.OccurredAt, loc)
		if !w.Contains(d) {
			continue
		}

		revenue := conv.Convert(tx.Amount.InexactFloat64(), tx.Currency)
		cost := conv.Convert(tx.CostPrice.InexactFloat64(), tx.Currency)
		profit := conv.Convert(tx.Profit.InexactFloat64(), tx.Currency)

		bucket := &agg.Days[w.index(d)]
		bucket.Count++
		bucket.Revenue += revenue
		bucket.Profit += profit

		agg.Count++
		agg.Revenue += revenue
		agg.Costs += cost
		agg.Profit += profit

		i, ok := productIdx[tx.ProductName]
		if !ok {
			i = len(agg.Products)
			productIdx[tx.ProductName] = i
			agg.Products = append(agg.Products, ProductStat{Name: tx.ProductName})
		}
		p := &agg.Products[i]
		p.SalesCount++
		p.TotalProfit += profit
		p.TotalRevenue += revenue
	}

	sort.SliceStable(agg.Products, func(i, j int) bool {
		return agg.Products[i].TotalProfit > agg.Products[j].TotalProfit
	})

	return agg
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return domain.TruncateDay(t)
}
