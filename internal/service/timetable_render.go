package service

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// weeklyGrid converts a batch grid into the day/slot map returned to
// clients. Every day and slot label is present; free slots are nil.
func weeklyGrid(grid *scheduler.Grid) dto.WeeklyGrid {
	out := make(dto.WeeklyGrid, scheduler.DaysPerWeek)
	for _, day := range scheduler.Days {
		slots := make(map[string]*dto.SlotCell, scheduler.SlotsPerDay)
		for slot, label := range scheduler.SlotLabels {
			var cell *dto.SlotCell
			if grid != nil && !grid[day][slot].Empty() {
				src := grid[day][slot]
				cell = &dto.SlotCell{
					CourseCode:  src.CourseCode,
					Faculty:     facultyLabel(src.Faculty),
					Session:     string(src.Session),
					Role:        string(src.Role),
					BlockLength: src.BlockLength,
				}
			}
			slots[label] = cell
		}
		out[day.String()] = slots
	}
	return out
}

func facultyLabel(name string) string {
	if name == "" {
		return dto.UnassignedFaculty
	}
	return name
}

func unscheduledItems(entries []scheduler.UnscheduledEntry) []dto.UnscheduledItem {
	items := make([]dto.UnscheduledItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.UnscheduledItem{
			CourseCode: entry.CourseCode,
			Faculty:    facultyLabel(entry.Faculty),
			Semester:   entry.Semester,
			Batch:      entry.Batch,
			Reason:     entry.Reason,
		})
	}
	return items
}

func unscheduledForBatch(entries []scheduler.UnscheduledEntry, batch string) []scheduler.UnscheduledEntry {
	out := make([]scheduler.UnscheduledEntry, 0)
	for _, entry := range entries {
		if entry.Batch == batch {
			out = append(out, entry)
		}
	}
	return out
}

func phaseNames(phases []scheduler.Phase) []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = string(p)
	}
	return names
}

// gridDataset lays a grid out as one row per day for the CSV and PDF
// exporters.
func gridDataset(semester, batch string, grid *scheduler.Grid) export.Dataset {
	headers := make([]string, 0, scheduler.SlotsPerDay+1)
	headers = append(headers, "Day")
	headers = append(headers, scheduler.SlotLabels[:]...)

	rows := make([][]string, 0, scheduler.DaysPerWeek)
	for _, day := range scheduler.Days {
		row := make([]string, 0, len(headers))
		row = append(row, day.String())
		for slot := 0; slot < scheduler.SlotsPerDay; slot++ {
			row = append(row, cellText(grid[day][slot]))
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:    fmt.Sprintf("Timetable %s", batch),
		Subtitle: fmt.Sprintf("Semester %s", semester),
		Headers:  headers,
		Rows:     rows,
	}
}

func cellText(cell scheduler.Cell) string {
	if cell.Empty() {
		return ""
	}
	if cell.Session.IsLab() {
		return fmt.Sprintf("%s [%s] (%s)", cell.CourseCode, cell.Session, facultyLabel(cell.Faculty))
	}
	return fmt.Sprintf("%s (%s)", cell.CourseCode, facultyLabel(cell.Faculty))
}

// WeeklyGridDataset lays out a client-facing grid the same way gridDataset
// lays out a stored one.
func WeeklyGridDataset(semester, batch string, grid dto.WeeklyGrid) export.Dataset {
	headers := make([]string, 0, scheduler.SlotsPerDay+1)
	headers = append(headers, "Day")
	headers = append(headers, scheduler.SlotLabels[:]...)

	rows := make([][]string, 0, scheduler.DaysPerWeek)
	for _, day := range scheduler.Days {
		row := make([]string, 0, len(headers))
		row = append(row, day.String())
		slots := grid[day.String()]
		for _, label := range scheduler.SlotLabels {
			row = append(row, slotCellText(slots[label]))
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:    fmt.Sprintf("Timetable %s", batch),
		Subtitle: fmt.Sprintf("Semester %s", semester),
		Headers:  headers,
		Rows:     rows,
	}
}

func slotCellText(cell *dto.SlotCell) string {
	if cell == nil {
		return ""
	}
	if scheduler.SessionType(cell.Session).IsLab() {
		return fmt.Sprintf("%s [%s] (%s)", cell.CourseCode, cell.Session, cell.Faculty)
	}
	return fmt.Sprintf("%s (%s)", cell.CourseCode, cell.Faculty)
}
