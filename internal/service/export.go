package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	windowsSheet  = "Windows"
	calendarSheet = "Calendar"
)

// Exporter renders the active schedule as a spreadsheet.
type Exporter struct {
	schedules *ScheduleService
	logger    *zap.Logger
}

func NewExporter(schedules *ScheduleService, logger *zap.Logger) *Exporter {
	return &Exporter{schedules: schedules, logger: logger}
}

// WriteXLSX writes the tenant's active schedule to w and returns the exported
// snapshot header. The workbook has a "Windows" sheet with one row per window
// and a "Calendar" sheet with one row per unit and one column per day.
func (e *Exporter) WriteXLSX(ctx context.Context, tenant string, w io.Writer) (*models.Snapshot, error) {
	header, windows, err := e.schedules.ListWindows(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, ErrNoActiveSchedule
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", windowsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(calendarSheet); err != nil {
		return nil, fmt.Errorf("create calendar sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeWindowsSheet(f, windows, headerStyle); err != nil {
		return nil, err
	}
	if err := writeCalendarSheet(f, windows, headerStyle); err != nil {
		return nil, err
	}

	if err := f.Write(w); err != nil {
		e.logger.Error("failed to write workbook", zap.String("tenant", tenant), zap.Error(err))
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("schedule exported",
		zap.String("tenant", tenant),
		zap.Int64("snapshot_id", header.ID),
		zap.Int("windows", len(windows)),
	)
	return header, nil
}

func writeWindowsSheet(f *excelize.File, windows []models.Window, headerStyle int) error {
	head := []any{"UG", "Maintenance", "Days", "Ranges"}
	if err := f.SetSheetRow(windowsSheet, "A1", &head); err != nil {
		return fmt.Errorf("write windows header: %w", err)
	}
	if err := f.SetCellStyle(windowsSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("style windows header: %w", err)
	}

	for i, w := range windows {
		row := []any{w.Unit, w.Code, len(w.Days), models.FormatDayRuns(w.Days)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(windowsSheet, cell, &row); err != nil {
			return fmt.Errorf("write window row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(windowsSheet, "A", "B", 14)
	_ = f.SetColWidth(windowsSheet, "D", "D", 48)
	return nil
}

func writeCalendarSheet(f *excelize.File, windows []models.Window, headerStyle int) error {
	// codes[unit-1][day-1] lists the codes scheduled that day
	var codes [models.UnitCount][models.DaysInYear][]string
	for _, w := range windows {
		unit := unitNumber(w.Unit)
		if unit < 1 || unit > models.UnitCount {
			continue
		}
		for _, d := range w.Days {
			if d < 1 || d > models.DaysInYear {
				continue
			}
			codes[unit-1][d-1] = append(codes[unit-1][d-1], w.Code)
		}
	}

	head := make([]any, 0, models.DaysInYear+1)
	head = append(head, "UG")
	for d := 1; d <= models.DaysInYear; d++ {
		head = append(head, d)
	}
	if err := f.SetSheetRow(calendarSheet, "A1", &head); err != nil {
		return fmt.Errorf("write calendar header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(models.DaysInYear+1, 1)
	if err := f.SetCellStyle(calendarSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style calendar header: %w", err)
	}

	for u := 0; u < models.UnitCount; u++ {
		row := make([]any, 0, models.DaysInYear+1)
		row = append(row, models.UnitLabel(u+1))
		for d := 0; d < models.DaysInYear; d++ {
			row = append(row, strings.Join(codes[u][d], "/"))
		}
		cell, _ := excelize.CoordinatesToCellName(1, u+2)
		if err := f.SetSheetRow(calendarSheet, cell, &row); err != nil {
			return fmt.Errorf("write calendar row %d: %w", u+2, err)
		}
	}
	return nil
}
