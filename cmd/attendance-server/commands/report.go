package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/clock"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
	"github.com/ravantech1548/Face-recogn-attendance/internal/printer"
)

var (
	reportSince  string
	reportUntil  string
	reportStaff  string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print attendance records",
	Long: `Print attendance records from the configured store, newest day first.

Output Formats:
  table - Fixed-width table with hours worked
  jsonl - Line-delimited JSON, one record per line

Examples:
  # Today's attendance
  attendance-server report

  # One staff member for March
  attendance-server report --since 2026-03-01 --until 2026-03-31 --staff S1

  # Export as JSON
  attendance-server report --since 2026-03-01 --format jsonl > march.jsonl`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSince, "since", "", "First day to include, YYYY-MM-DD (default today)")
	reportCmd.Flags().StringVar(&reportUntil, "until", "", "Last day to include, YYYY-MM-DD (default: no limit)")
	reportCmd.Flags().StringVar(&reportStaff, "staff", "", "Only this staff id")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format: table or jsonl")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	switch reportFormat {
	case "table", "jsonl":
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", reportFormat),
			[]string{"Valid formats: table, jsonl"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	since := reportSince
	if since == "" {
		since = clock.Today(clock.System{}, loc)
	}

	st, err := openStack(cmd.Context(), cfg, logger)
	if err != nil {
		return printer.ErrorWithContext(
			"failed to open attendance store",
			err.Error(),
			map[string]string{"Store": cfg.Store},
			nil,
		)
	}
	defer st.Close()

	staff := service.NewStaffDirectory(st.staff, 0, logger)
	svc := service.NewAttendanceService(st.records, staff, nil, service.Options{
		Location:     loc,
		StoreTimeout: 30 * time.Second,
		Logger:       logger,
	})

	views, err := svc.QueryRecords(cmd.Context(), service.Filter{
		StartDate: since,
		EndDate:   reportUntil,
		StaffID:   reportStaff,
	})
	if err != nil {
		return printer.Error(
			"report failed",
			err.Error(),
			[]string{"Dates must be YYYY-MM-DD"},
		)
	}

	out := cmd.OutOrStdout()
	if reportFormat == "jsonl" {
		return printer.FormatJSONL(out, views)
	}
	printer.FormatTable(out, views)
	return nil
}
