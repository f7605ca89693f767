package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

// StatsRetentionDays is how long visit logs and daily totals are kept.
const StatsRetentionDays = 60

const dateLayout = "2006-01-02"

// StatsStore records dashboard visits as daily page views and unique
// visitors, keyed by UTC date.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore creates a new StatsStore.
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// RecordVisit counts one page view for the day of at. The first visit of
// an IP on a given day also counts as a unique visitor. Rows older than
// StatsRetentionDays are removed on the way.
func (s *StatsStore) RecordVisit(ctx context.Context, v models.Visit, at time.Time) error {
	at = dbTime(at)
	day := at.Format(dateLayout)
	cutoff := at.AddDate(0, 0, -StatsRetentionDays).Format(dateLayout)

	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO visit_logs (date, ip, os, browser, referrer, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (date, ip) DO NOTHING
		`, day, v.IP, v.OS, v.Browser, v.Referrer, at)
		if err != nil {
			return fmt.Errorf("insert visit: %w", err)
		}
		newUV := 0
		if n, _ := res.RowsAffected(); n > 0 {
			newUV = 1
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO daily_stats (date, pv, uv)
			VALUES ($1, 1, $2)
			ON CONFLICT (date)
			DO UPDATE SET pv = daily_stats.pv + 1, uv = daily_stats.uv + EXCLUDED.uv
		`, day, newUV); err != nil {
			return fmt.Errorf("update daily stats: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM visit_logs WHERE date < $1`, cutoff); err != nil {
			return fmt.Errorf("prune visits: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_stats WHERE date < $1`, cutoff); err != nil {
			return fmt.Errorf("prune daily stats: %w", err)
		}
		return nil
	})
}

// Summary aggregates totals, the day of today, a seven day trend and the
// OS and browser distribution of the last 30 days.
func (s *StatsStore) Summary(ctx context.Context, today time.Time) (*models.StatsSummary, error) {
	today = today.UTC()
	sum := &models.StatsSummary{
		Trend:    []models.DailyStats{},
		OS:       []models.NamedCount{},
		Browsers: []models.NamedCount{},
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(pv), 0), COALESCE(SUM(uv), 0) FROM daily_stats`,
	).Scan(&sum.TotalPV, &sum.TotalUV); err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}

	start := today.AddDate(0, 0, -6).Format(dateLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, pv, uv FROM daily_stats WHERE date >= $1 ORDER BY date`, start)
	if err != nil {
		return nil, fmt.Errorf("stats trend: %w", err)
	}
	byDate := make(map[string]models.DailyStats)
	for rows.Next() {
		var d models.DailyStats
		if err := rows.Scan(&d.Date, &d.PV, &d.UV); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		byDate[d.Date] = d
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats trend: %w", err)
	}

	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(dateLayout)
		d, ok := byDate[day]
		if !ok {
			d = models.DailyStats{Date: day}
		}
		sum.Trend = append(sum.Trend, d)
	}
	last := sum.Trend[len(sum.Trend)-1]
	sum.TodayPV, sum.TodayUV = last.PV, last.UV

	since := today.AddDate(0, 0, -30).Format(dateLayout)
	if sum.OS, err = s.distribution(ctx, "os", since); err != nil {
		return nil, err
	}
	if sum.Browsers, err = s.distribution(ctx, "browser", since); err != nil {
		return nil, err
	}
	return sum, nil
}

// distribution counts visits per value of column ("os" or "browser").
func (s *StatsStore) distribution(ctx context.Context, column, since string) ([]models.NamedCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) AS n
		FROM visit_logs
		WHERE date >= $1 AND `+column+` <> ''
		GROUP BY `+column+`
		ORDER BY n DESC, `+column, since)
	if err != nil {
		return nil, fmt.Errorf("stats %s distribution: %w", column, err)
	}
	defer rows.Close()

	out := []models.NamedCount{}
	for rows.Next() {
		var c models.NamedCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan %s distribution: %w", column, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
