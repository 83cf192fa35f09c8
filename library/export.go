package library

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ExportAnalyticsCSV writes the three analytics sections (genre totals, loan
// status counts, monthly loan counts) to path. The destination comes from the
// caller; this routine only formats what the dashboard accessors report.
func ExportAnalyticsCSV(dash *Dashboard, path string) error {
	genres, err := dash.GenreTotals()
	if err != nil {
		return err
	}
	status, err := dash.LoanStatusCounts(time.Now())
	if err != nil {
		return err
	}
	monthly, err := dash.MonthlyLoanCounts()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{
		{"Genre Totals"},
		{"Genre", "Total Copies"},
	}
	for _, g := range genres {
		records = append(records, []string{g.Genre, strconv.Itoa(g.Total)})
	}
	records = append(records,
		[]string{},
		[]string{"Loan Status"},
		[]string{"Status", "Count"},
		[]string{"Active", strconv.Itoa(status.Active)},
		[]string{"Overdue", strconv.Itoa(status.Overdue)},
		[]string{"Returned", strconv.Itoa(status.Returned)},
		[]string{},
		[]string{"Monthly Loans"},
		[]string{"Month", "Loan Count"},
	)
	for _, m := range monthly {
		records = append(records, []string{m.Month, strconv.Itoa(m.Count)})
	}

	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
