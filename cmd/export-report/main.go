package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/config"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/database"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/export"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/repository"

	"go.uber.org/zap"
)

// 导出某用户某月的睡眠/状态报表为 Excel 文件
// 用法: export-report -user <user_id> -month 2026-03 [-out report.xlsx]
func main() {
	userID := flag.String("user", "", "user id (required)")
	month := flag.String("month", "", "month in YYYY-MM format (required)")
	out := flag.String("out", "", "output file path (default: conditions-<month>.xlsx)")
	flag.Parse()

	if *userID == "" || *month == "" {
		flag.Usage()
		os.Exit(2)
	}

	firstDay, err := time.Parse("2006-01", *month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid month %q: %v\n", *month, err)
		os.Exit(2)
	}
	fromDate := firstDay.Format("2006-01-02")
	toDate := firstDay.AddDate(0, 1, -1).Format("2006-01-02")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close(db)

	logger := zap.NewNop()
	sleepRepo := repository.NewSleepRecordsRepository(db, logger)
	conditionRepo := repository.NewDailyConditionsRepository(db, logger)

	ctx := context.Background()
	records, err := sleepRepo.ListSleepRecords(ctx, *userID, fromDate, toDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list sleep records: %v\n", err)
		os.Exit(1)
	}
	conditions, err := conditionRepo.ListDailyConditions(ctx, *userID, fromDate, toDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list daily conditions: %v\n", err)
		os.Exit(1)
	}

	data, err := export.GenerateConditionReport(records, conditions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("conditions-%s.xlsx", *month)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d sleep records and %d conditions to %s\n", len(records), len(conditions), outPath)
}
