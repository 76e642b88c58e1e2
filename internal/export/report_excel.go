package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/engine"

	"github.com/xuri/excelize/v2"
)

// ConditionReportHeader 月度报表表头
var ConditionReportHeader = []string{
	"Date",
	"Bedtime",
	"Waketime",
	"Duration (min)",
	"Confidence",
	"Source",
	"State",
	"Score",
	"Energy Curve (8-20h)",
}

// GenerateConditionReport 生成月度睡眠/状态报表 Excel 文件
// 按日期合并睡眠记录与当日状态，某一侧缺失时对应列留空。
func GenerateConditionReport(records []domain.SleepRecord, conditions []domain.DailyCondition) ([]byte, error) {
	f := excelize.NewFile()
	// 注意：这里不能 defer Close()，WriteTo 需要文件保持打开

	sheetName := "Daily Condition"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 写入表头
	for col, header := range ConditionReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	// 列宽
	columnWidths := []float64{12, 18, 18, 14, 11, 18, 8, 8, 30}
	for i := range ConditionReportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 按日期合并两侧数据
	conditionByDate := make(map[string]domain.DailyCondition, len(conditions))
	for _, c := range conditions {
		conditionByDate[c.Date] = c
	}
	recordByDate := make(map[string]domain.SleepRecord, len(records))
	var dates []string
	for _, r := range records {
		recordByDate[r.Date] = r
		dates = append(dates, r.Date)
	}
	for _, c := range conditions {
		if _, ok := recordByDate[c.Date]; !ok {
			dates = append(dates, c.Date)
		}
	}

	for rowIdx, date := range dates {
		row := rowIdx + 2
		values := make([]any, len(ConditionReportHeader))
		values[0] = date

		if r, ok := recordByDate[date]; ok {
			if r.Bedtime != nil {
				values[1] = r.Bedtime.Format("2006-01-02 15:04")
			}
			if r.Waketime != nil {
				values[2] = r.Waketime.Format("2006-01-02 15:04")
			}
			if r.DurationMinutes != nil {
				values[3] = *r.DurationMinutes
			}
			values[4] = strings.Repeat("★", r.ConfidenceStars)
			values[5] = string(r.Source)
		}

		if c, ok := conditionByDate[date]; ok {
			values[6] = string(c.State)
			values[7] = c.ScoreInternal
			values[8] = formatEnergyCurve(c.EnergyCurve)
		}

		for col, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// formatEnergyCurve 将能量曲线压成 "2 3 3 3 2 ..." 形式
func formatEnergyCurve(curve domain.EnergyCurve) string {
	if len(curve) == 0 {
		return ""
	}
	var parts []string
	for hour := engine.CurveStartHour; hour <= engine.CurveEndHour; hour++ {
		parts = append(parts, fmt.Sprintf("%d", curve[hour]))
	}
	return strings.Join(parts, " ")
}
