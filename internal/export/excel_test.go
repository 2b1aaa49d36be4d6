package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vigil/internal/model"
)

func exportSchedule(t *testing.T) *model.Schedule {
	t.Helper()
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	s := &model.Schedule{
		ID:        "2026-01-15",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		Slots: []model.Slot{
			model.NewSlot(start.Add(6 * time.Hour)),
			model.NewSlot(start.Add(7 * time.Hour)),
			model.NewSlot(start.AddDate(0, 0, 1).Add(8 * time.Hour)),
		},
	}
	require.NoError(t, s.Slots[0].Claim("Maria", "1"))
	require.NoError(t, s.Slots[2].Claim("João", "2"))
	return s
}

func TestWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(exportSchedule(t), &buf))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	require.Equal(t, []string{"2026-01-15", "2026-01-16"}, sheets)

	header, err := file.GetCellValue("2026-01-15", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Horário", header)

	label, err := file.GetCellValue("2026-01-15", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15 06h-07h", label)

	name, err := file.GetCellValue("2026-01-15", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Maria", name)

	// The free 07h slot stays out of the export.
	empty, err := file.GetCellValue("2026-01-15", "A3")
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	name, err = file.GetCellValue("2026-01-16", "B2")
	require.NoError(t, err)
	assert.Equal(t, "João", name)
}

func TestWorkbook_NoBookings(t *testing.T) {
	s := exportSchedule(t)
	for i := range s.Slots {
		s.Slots[i].Booking = nil
	}

	var buf bytes.Buffer
	assert.Error(t, Workbook(s, &buf))
	assert.Zero(t, buf.Len())
}
