package report

import (
	"fmt"
	"time"

	"exchange-backend/internal/auth"
	"exchange-backend/internal/database"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CashChartPoint struct {
	Label     string  `json:"label"` // date / week start / month start
	NprCash   float64 `json:"npr_cash"`
	NprOnline float64 `json:"npr_online"`
	InrCash   float64 `json:"inr_cash"`
	InrOnline float64 `json:"inr_online"`
	NprTotal  float64 `json:"npr_total"`
	InrTotal  float64 `json:"inr_total"`
}

type CashChartGrandTotals struct {
	NprCash   float64 `json:"npr_cash"`
	NprOnline float64 `json:"npr_online"`
	InrCash   float64 `json:"inr_cash"`
	InrOnline float64 `json:"inr_online"`
	NprTotal  float64 `json:"npr_total"`
	InrTotal  float64 `json:"inr_total"`
}

type CashChartResponse struct {
	Period      string               `json:"period"` // daily | weekly | monthly
	From        string               `json:"from"`
	To          string               `json:"to"`
	Points      []CashChartPoint     `json:"points"`
	GrandTotals CashChartGrandTotals `json:"grand_totals"`
}

// GET /api/dashboard/cash-chart?period=daily&count=7&staff_id=2
// Charts money coming over the counter: NPR taken in on sells, INR taken in
// on buys, split by payment method. The two currencies are never summed into
// one figure.
func CashChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		var staffID uint
		if role == models.RoleStaff {
			staffID = userID
		} else if sidStr := c.Query("staff_id"); sidStr != "" {
			if _, err := fmt.Sscan(sidStr, &staffID); err != nil || staffID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
		}

		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count invalid")
			}
		}

		now := time.Now()
		loc := now.Location()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time

		switch period {
		case "weekly":
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
		default:
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		type row struct {
			Bucket   time.Time `gorm:"column:bucket"`
			Currency string    `gorm:"column:currency"`
			Method   string    `gorm:"column:method"`
			Total    float64   `gorm:"column:total"`
		}
		var rows []row

		var trunc string
		switch period {
		case "weekly":
			trunc = "date_trunc('week', timestamp)::date"
		case "monthly":
			trunc = "date_trunc('month', timestamp)::date"
			end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
		default:
			trunc = "timestamp::date"
		}

		sql := fmt.Sprintf(`
			SELECT %s AS bucket,
				   from_currency AS currency,
				   method,
				   SUM(from_amount) AS total
			FROM exchange_transactions
			WHERE timestamp >= ? AND timestamp < ?
		`, trunc)
		args := []interface{}{start, end.AddDate(0, 0, 1)}
		if staffID != 0 {
			sql += " AND staff_id = ?"
			args = append(args, staffID)
		}
		sql += " GROUP BY bucket, currency, method ORDER BY bucket ASC;"

		if err := database.DB.Raw(sql, args...).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not aggregate chart data")
		}

		type bucketAgg struct {
			Bucket    time.Time
			NprCash   float64
			NprOnline float64
			InrCash   float64
			InrOnline float64
		}

		buckets := make(map[time.Time]*bucketAgg)

		for _, r := range rows {
			agg, ok := buckets[r.Bucket]
			if !ok {
				agg = &bucketAgg{Bucket: r.Bucket}
				buckets[r.Bucket] = agg
			}

			online := r.Method == string(models.PaymentOnline)
			switch models.Currency(r.Currency) {
			case models.CurrencyNPR:
				if online {
					agg.NprOnline += r.Total
				} else {
					agg.NprCash += r.Total
				}
			case models.CurrencyINR:
				if online {
					agg.InrOnline += r.Total
				} else {
					agg.InrCash += r.Total
				}
			}
		}

		ordered := make([]bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			ordered = append(ordered, *v)
		}

		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if ordered[j].Bucket.Before(ordered[i].Bucket) {
					ordered[i], ordered[j] = ordered[j], ordered[i]
				}
			}
		}

		points := make([]CashChartPoint, 0, len(ordered))
		grand := CashChartGrandTotals{}

		for _, b := range ordered {
			p := CashChartPoint{
				Label:     b.Bucket.Format("2006-01-02"),
				NprCash:   b.NprCash,
				NprOnline: b.NprOnline,
				InrCash:   b.InrCash,
				InrOnline: b.InrOnline,
				NprTotal:  b.NprCash + b.NprOnline,
				InrTotal:  b.InrCash + b.InrOnline,
			}
			points = append(points, p)

			grand.NprCash += b.NprCash
			grand.NprOnline += b.NprOnline
			grand.InrCash += b.InrCash
			grand.InrOnline += b.InrOnline
		}
		grand.NprTotal = grand.NprCash + grand.NprOnline
		grand.InrTotal = grand.InrCash + grand.InrOnline

		return c.JSON(CashChartResponse{
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		})
	}
}
