package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/studyon/billing/internal/db"
	"github.com/studyon/billing/internal/repository/postgres"
	"github.com/studyon/billing/internal/service/history"
)

// Prints sales report for a single month: per course counts and totals.
// By default reports the previous month, like a job ran on the 1st would.
func main() {
	if err := run(context.Background(), os.Getenv, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, args []string) error {
	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	dsn := fs.StringP("database", "d", getenv("DATABASE_URI"), "Database connection string")
	month := fs.StringP("month", "m", "", "Month to report in 'YYYY-MM' format (default: previous month)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dsn == "" {
		return fmt.Errorf("database connection string is required")
	}

	start, err := monthStart(*month, time.Now())
	if err != nil {
		return err
	}
	end := start.AddDate(0, 1, 0)

	pool, err := db.Connect(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	defer pool.Close()

	storage := postgres.NewStorage(pool)
	historyService := history.NewService(storage)

	sales, err := historyService.MonthlyReport(ctx, start, end)
	if err != nil {
		return err
	}

	fmt.Printf("Sales report for %s\n\n", start.Format("January 2006"))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tKIND\tSOLD\tTOTAL")

	total := decimal.Zero
	for _, s := range sales {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.CourseTitle, s.CourseKind, s.Count, s.Total.StringFixed(2))
		total = total.Add(s.Total)
	}

	fmt.Fprintf(w, "\t\t\t%s\n", total.StringFixed(2))
	return w.Flush()
}

// Parse 'YYYY-MM' into the month start in UTC.
// Empty value means the month before 'now'.
func monthStart(month string, now time.Time) (time.Time, error) {
	if month == "" {
		y, m, _ := now.UTC().Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0), nil
	}

	parsed, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month '%s', expected 'YYYY-MM' format", month)
	}
	return parsed, nil
}
