package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ScheduleRow is one meeting of a placed course, flattened for export.
// Parity is empty for meetings held every week.
type ScheduleRow struct {
	Course   string
	Name     string
	Day      string
	Start    string
	End      string
	Parity   string
	Location string
}

// scheduleColumns fixes the column order for the CSV and PDF renderers.
var scheduleColumns = []string{"Course", "Name", "Day", "Start", "End", "Parity", "Location"}

func (r ScheduleRow) record() []string {
	return []string{r.Course, r.Name, r.Day, r.Start, r.End, r.Parity, r.Location}
}

// CSVExporter renders a placed schedule as CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// RenderSchedule produces one CSV line per course meeting, preceded by a
// header line. An empty schedule yields just the header.
func (e *CSVExporter) RenderSchedule(rows []ScheduleRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(scheduleColumns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return nil, fmt.Errorf("write csv row for %s: %w", row.Course, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
