// Package export renders a schedule's bookings into an Excel workbook for
// admin download.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"vigil/internal/model"
	"vigil/internal/view"
)

var headerColumns = []string{"Horário", "Nome do Membro"}

// Workbook writes one sheet per schedule day, each listing the day's booked
// slots, to w in xlsx format.
func Workbook(s *model.Schedule, w io.Writer) error {
	file := excelize.NewFile()
	defer file.Close()

	groups := view.GroupByDay(view.BookedSlots(s))
	if len(groups) == 0 {
		return fmt.Errorf("schedule %s has no bookings to export", s.ID)
	}

	for i, group := range groups {
		sheet := sheetName(group.Label)
		if i == 0 {
			file.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := file.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := writeRow(file, sheet, 1, headerColumns...); err != nil {
			return err
		}
		for row, slot := range group.Slots {
			if err := writeRow(file, sheet, row+2, slot.Label(), slot.BookedBy()); err != nil {
				return err
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, row int, values ...string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

// sheetName keeps names inside the 31-char Excel limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
