package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
)

const (
	DefaultRevenueMonths    = 6
	DefaultTopProductsLimit = 5
	ordersByDayWindow       = 30 * 24 * time.Hour
)

// AnalyticsService recomputes every rollup from raw orders on each call; at
// storefront volumes always-fresh numbers beat precomputed tables. Per-status
// totals group in SQL, calendar rollups group in process (see DESIGN.md).
type AnalyticsService struct {
	Orders  *repo.OrderRepo
	Catalog *repo.CatalogRepo

	now func() time.Time
}

func NewAnalyticsService(orders *repo.OrderRepo, catalog *repo.CatalogRepo) *AnalyticsService {
	return &AnalyticsService{Orders: orders, Catalog: catalog, now: time.Now}
}

type OrderStats struct {
	TotalOrders  int64   `json:"totalOrders"`
	TotalRevenue float64 `json:"totalRevenue"`
	Pending      int64   `json:"pending"`
	Confirmed    int64   `json:"confirmed"`
	Shipped      int64   `json:"shipped"`
	Delivered    int64   `json:"delivered"`
	Cancelled    int64   `json:"cancelled"`
}

// Stats folds the per-status buckets into the fixed summary shape. Statuses
// with no orders contribute zero.
func (s *AnalyticsService) Stats(ctx context.Context) (*OrderStats, error) {
	rows, err := s.Orders.StatusTotals(ctx)
	if err != nil {
		return nil, err
	}

	stats := OrderStats{}
	var revenue float64
	for _, row := range rows {
		stats.TotalOrders += row.Count
		revenue += row.Revenue
		switch row.Status {
		case domain.OrderStatusPending:
			stats.Pending = row.Count
		case domain.OrderStatusConfirmed:
			stats.Confirmed = row.Count
		case domain.OrderStatusShipped:
			stats.Shipped = row.Count
		case domain.OrderStatusDelivered:
			stats.Delivered = row.Count
		case domain.OrderStatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	stats.TotalRevenue = domain.Round2(revenue)
	return &stats, nil
}

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// RevenueByMonth covers the last `months` calendar months including the
// current one, oldest first, cancelled orders excluded, empty months
// zero-filled.
func (s *AnalyticsService) RevenueByMonth(ctx context.Context, months int) ([]MonthRevenue, error) {
	if months <= 0 {
		months = DefaultRevenueMonths
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	orders, err := s.Orders.ListCreatedBetween(ctx, start, now.Add(time.Second), true)
	if err != nil {
		return nil, err
	}

	type monthKey struct {
		Year  int
		Month time.Month
	}
	buckets := lo.GroupBy(orders, func(o models.Order) monthKey {
		return monthKey{Year: o.CreatedAt.Year(), Month: o.CreatedAt.Month()}
	})

	out := make([]MonthRevenue, 0, months)
	for i := 0; i < months; i++ {
		cursor := start.AddDate(0, i, 0)
		key := monthKey{Year: cursor.Year(), Month: cursor.Month()}
		revenue := lo.SumBy(buckets[key], func(o models.Order) float64 { return o.TotalAmount })
		out = append(out, MonthRevenue{
			Month:   cursor.Month().String()[:3],
			Revenue: domain.Round2(revenue),
		})
	}
	return out, nil
}

type ProductSales struct {
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Sales     int     `json:"sales"`
	Revenue   float64 `json:"revenue"`
	Image     string  `json:"image,omitempty"`
}

// TopProducts ranks products by revenue across all non-cancelled orders.
func (s *AnalyticsService) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	orders, err := s.Orders.ListAll(ctx, true)
	if err != nil {
		return nil, err
	}
	return s.rankProducts(ctx, orders, limit), nil
}

func (s *AnalyticsService) rankProducts(ctx context.Context, orders []models.Order, limit int) []ProductSales {
	items := lo.FlatMap(orders, func(o models.Order, _ int) []models.OrderItem { return o.Items })
	grouped := lo.GroupBy(items, func(it models.OrderItem) uint { return it.ProductID })

	ranked := make([]ProductSales, 0, len(grouped))
	for productID, rows := range grouped {
		entry := ProductSales{ProductID: productID, Name: rows[0].Name}
		var revenue float64
		for _, row := range rows {
			entry.Sales += row.Quantity
			revenue += row.Price * float64(row.Quantity)
		}
		entry.Revenue = revenue
		ranked = append(ranked, entry)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	// Thumbnail enrichment is best-effort: a failed lookup drops only the
	// image, never the row.
	l := logging.FromContext(ctx).With("svc", "analytics.top_products")
	for i := range ranked {
		product, err := s.Catalog.GetProduct(ctx, ranked[i].ProductID)
		if err != nil {
			l.Warn("thumbnail_lookup_failed", "product", ranked[i].ProductID, "error", err)
			continue
		}
		ranked[i].Image = product.Thumbnail()
	}

	for i := range ranked {
		ranked[i].Revenue = domain.Round2(ranked[i].Revenue)
	}
	return ranked
}

type DayCount struct {
	Day    string `json:"day"`
	Orders int64  `json:"orders"`
}

// mondayFirst lists weekdays in display order. The grouping key follows the
// Sunday=1 convention of the stored data; the response is re-indexed so the
// chart reads Monday through Sunday.
var mondayFirst = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// OrdersByDay counts non-cancelled orders per weekday over the trailing 30
// days. Always exactly 7 entries, zero-filled.
func (s *AnalyticsService) OrdersByDay(ctx context.Context) ([]DayCount, error) {
	now := s.now()
	orders, err := s.Orders.ListCreatedBetween(ctx, now.Add(-ordersByDayWindow), now.Add(time.Second), true)
	if err != nil {
		return nil, err
	}
	return weekdayBuckets(orders), nil
}

func weekdayBuckets(orders []models.Order) []DayCount {
	// Sunday=1 grouping key, matching the persisted convention.
	counts := map[int]int64{}
	for _, o := range orders {
		counts[int(o.CreatedAt.Weekday())+1]++
	}

	out := make([]DayCount, 0, 7)
	for _, wd := range mondayFirst {
		out = append(out, DayCount{
			Day:    wd.String()[:3],
			Orders: counts[int(wd)+1],
		})
	}
	return out
}

type DailyPoint struct {
	Day     int     `json:"day"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

type MonthlyAnalytics struct {
	Month           string                       `json:"month"`
	Year            int                          `json:"year"`
	TotalOrders     int64                        `json:"totalOrders"`
	TotalRevenue    float64                      `json:"totalRevenue"`
	StatusBreakdown map[domain.OrderStatus]int64 `json:"statusBreakdown"`
	TopProducts     []ProductSales               `json:"topProducts"`
	OrdersByDay     []DayCount                   `json:"ordersByDay"`
	DailySeries     []DailyPoint                 `json:"dailySeries"`
}

// Monthly combines the month's rollups. Cancelled orders appear in the
// status breakdown only; revenue, totals, top products, the weekday
// breakdown and the daily series all exclude them. The daily series is
// sparse: days with zero orders are absent, unlike the zero-filled weekday
// breakdown.
func (s *AnalyticsService) Monthly(ctx context.Context, month time.Month, year int) (*MonthlyAnalytics, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	orders, err := s.Orders.ListCreatedBetween(ctx, start, end, false)
	if err != nil {
		return nil, err
	}

	breakdown := map[domain.OrderStatus]int64{}
	for _, status := range domain.OrderStatuses() {
		breakdown[status] = 0
	}
	active := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		breakdown[o.Status]++
		if o.Status != domain.OrderStatusCancelled {
			active = append(active, o)
		}
	}

	var revenue float64
	daily := map[int]*DailyPoint{}
	for _, o := range active {
		revenue += o.TotalAmount
		day := o.CreatedAt.Day()
		point, ok := daily[day]
		if !ok {
			point = &DailyPoint{Day: day}
			daily[day] = point
		}
		point.Orders++
		point.Revenue += o.TotalAmount
	}

	series := make([]DailyPoint, 0, len(daily))
	for _, point := range daily {
		point.Revenue = domain.Round2(point.Revenue)
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Day < series[j].Day })

	return &MonthlyAnalytics{
		Month:           month.String()[:3],
		Year:            year,
		TotalOrders:     int64(len(active)),
		TotalRevenue:    domain.Round2(revenue),
		StatusBreakdown: breakdown,
		TopProducts:     s.rankProducts(ctx, active, DefaultTopProductsLimit),
		OrdersByDay:     weekdayBuckets(active),
		DailySeries:     series,
	}, nil
}
