package library

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Dashboard aggregates read-only rollups for the landing screen and the
// analytics export. Everything is recomputed on demand from the store.
type Dashboard struct {
	db *Database
}

func NewDashboard(db *Database) *Dashboard { return &Dashboard{db: db} }

// TotalCopies sums quantity across the whole catalog.
func (dash *Dashboard) TotalCopies() (int, error) {
	var n int
	err := dash.db.db.Get(&n, `SELECT COALESCE(SUM(quantity), 0) FROM books`)
	if err != nil {
		return 0, storeErr("total copies", err)
	}
	return n, nil
}

// ActiveLoans counts every unreturned loan, overdue or not.
func (dash *Dashboard) ActiveLoans() (int, error) {
	var n int
	err := dash.db.db.Get(&n, `SELECT COUNT(*) FROM loans WHERE returned = 0`)
	if err != nil {
		return 0, storeErr("active loans", err)
	}
	return n, nil
}

// OverdueLoans counts unreturned loans whose due date has passed.
func (dash *Dashboard) OverdueLoans(now time.Time) (int, error) {
	var n int
	err := dash.db.db.Get(&n,
		`SELECT COUNT(*) FROM loans WHERE returned = 0 AND return_date < ?`, now.UTC())
	if err != nil {
		return 0, storeErr("overdue loans", err)
	}
	return n, nil
}

type recentRow struct {
	Title        string    `db:"title"`
	BorrowerName string    `db:"borrower_name"`
	LoanDate     time.Time `db:"loan_date"`
}

// RecentActivity renders the most recent loans as human-readable sentences,
// newest first. With no loans at all it returns the single placeholder entry.
func (dash *Dashboard) RecentActivity(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []recentRow
	err := dash.db.db.Select(&rows,
		`SELECT b.title, l.borrower_name, l.loan_date
         FROM loans l JOIN books b ON l.isbn = b.isbn
         ORDER BY l.loan_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, storeErr("recent activity", err)
	}

	if len(rows) == 0 {
		return []string{"No recent activities"}, nil
	}
	activities := make([]string, 0, len(rows))
	for _, r := range rows {
		activities = append(activities, fmt.Sprintf("'%s' borrowed by %s on %s",
			r.Title, r.BorrowerName, r.LoanDate.Format("2006-01-02")))
	}
	return activities, nil
}

// ---------------------------------------------------------------------------
// Analytics accessors consumed by the CSV export
// ---------------------------------------------------------------------------

// GenreTotal is the owned-copy count for one genre.
type GenreTotal struct {
	Genre string `db:"genre"`
	Total int    `db:"total"`
}

func (dash *Dashboard) GenreTotals() ([]GenreTotal, error) {
	var totals []GenreTotal
	err := dash.db.db.Select(&totals,
		`SELECT genre, SUM(quantity) AS total FROM books GROUP BY genre ORDER BY genre`)
	if err != nil {
		return nil, storeErr("genre totals", err)
	}
	return totals, nil
}

// LoanStatusCounts partitions all loans into active (on time), overdue and
// returned. The three buckets are disjoint.
type LoanStatusCounts struct {
	Active   int
	Overdue  int
	Returned int
}

func (dash *Dashboard) LoanStatusCounts(now time.Time) (LoanStatusCounts, error) {
	var c LoanStatusCounts
	ts := now.UTC()
	if err := dash.db.db.Get(&c.Active,
		`SELECT COUNT(*) FROM loans WHERE returned = 0 AND return_date >= ?`, ts); err != nil {
		return c, storeErr("loan status counts", err)
	}
	if err := dash.db.db.Get(&c.Overdue,
		`SELECT COUNT(*) FROM loans WHERE returned = 0 AND return_date < ?`, ts); err != nil {
		return c, storeErr("loan status counts", err)
	}
	if err := dash.db.db.Get(&c.Returned,
		`SELECT COUNT(*) FROM loans WHERE returned = 1`); err != nil {
		return c, storeErr("loan status counts", err)
	}
	return c, nil
}

// MonthlyCount is the number of loans opened in one %Y-%m month.
type MonthlyCount struct {
	Month string `db:"month"`
	Count int    `db:"count"`
}

// MonthlyLoanCounts buckets loans by month over the trailing six months.
func (dash *Dashboard) MonthlyLoanCounts() ([]MonthlyCount, error) {
	var counts []MonthlyCount
	err := dash.db.db.Select(&counts,
		`SELECT strftime('%Y-%m', loan_date) AS month, COUNT(*) AS count
         FROM loans WHERE loan_date >= date('now', '-6 months')
         GROUP BY month ORDER BY month`)
	if err != nil {
		return nil, storeErr("monthly loan counts", err)
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// Periodic overdue refresh
// ---------------------------------------------------------------------------

// OverdueWatcher keeps a displayed overdue counter fresh without reloading
// the whole dashboard. Only the overdue count is re-read on each tick.
type OverdueWatcher struct {
	dash     *Dashboard
	interval time.Duration
	log      zerolog.Logger
	count    atomic.Int64
}

func NewOverdueWatcher(dash *Dashboard, interval time.Duration, log zerolog.Logger) *OverdueWatcher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OverdueWatcher{dash: dash, interval: interval, log: log}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (w *OverdueWatcher) Run(ctx context.Context) {
	w.refresh()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

// Count returns the overdue count from the latest refresh.
func (w *OverdueWatcher) Count() int { return int(w.count.Load()) }

func (w *OverdueWatcher) refresh() {
	n, err := w.dash.OverdueLoans(time.Now())
	if err != nil {
		w.log.Warn().Err(err).Msg("overdue refresh failed")
		return
	}
	w.count.Store(int64(n))
	w.log.Debug().Int("overdue", n).Msg("overdue counter refreshed")
}
