package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExporter_WriteXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap := f.install(t, "acme",
		models.WindowInput{Unit: 2, Code: "CK", Days: append(days(1, 20), 40)},
		models.WindowInput{Unit: 1, Code: "AR", Days: []int{1, 2}},
		models.WindowInput{Unit: 1, Code: "MP", Days: []int{2}},
	)

	var buf bytes.Buffer
	header, err := NewExporter(f.svc, zap.NewNop()).WriteXLSX(ctx, "acme", &buf)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, header.ID)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Windows", "Calendar"}, wb.GetSheetList())

	rows, err := wb.GetRows("Windows")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"UG", "Maintenance", "Days", "Ranges"}, rows[0])
	assert.Equal(t, []string{"01", "AR", "2", "1-2"}, rows[1])
	assert.Equal(t, []string{"01", "MP", "1", "2"}, rows[2])
	assert.Equal(t, []string{"02", "CK", "21", "1-20, 40"}, rows[3])

	cell, err := wb.GetCellValue("Calendar", "C2")
	require.NoError(t, err)
	assert.Equal(t, "AR/MP", cell, "unit 01, day 2")

	cell, err = wb.GetCellValue("Calendar", "A51")
	require.NoError(t, err)
	assert.Equal(t, "50", cell)

	cell, err = wb.GetCellValue("Calendar", "AO3")
	require.NoError(t, err)
	assert.Equal(t, "CK", cell, "unit 02, day 40")
}

func TestExporter_NoActiveSchedule(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	_, err := NewExporter(f.svc, zap.NewNop()).WriteXLSX(context.Background(), "acme", &buf)
	assert.ErrorIs(t, err, ErrNoActiveSchedule)
	assert.Zero(t, buf.Len())
}
