package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/chupolovski/planner-api/internal/timetable"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
	"github.com/chupolovski/planner-api/pkg/export"
)

type sessionReader interface {
	PlacedCourses(ctx context.Context, sessionID string) ([]string, timetable.Pool, error)
}

// ExportArtifact is a rendered download.
type ExportArtifact struct {
	ContentType string
	Filename    string
	Data        []byte
}

// ExportService renders a session's placed schedule as CSV or a weekly PDF
// grid.
type ExportService struct {
	planner sessionReader
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService creates the export service.
func NewExportService(planner sessionReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		planner: planner,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// Export renders the session schedule in the requested format.
func (s *ExportService) Export(ctx context.Context, sessionID, format string) (*ExportArtifact, error) {
	keys, pool, err := s.planner.PlacedCourses(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "csv":
		return s.renderCSV(keys, pool)
	case "pdf":
		return s.renderPDF(keys, pool)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}
}

// scheduleRows flattens the placed courses into per-meeting export rows,
// ordered by course key.
func scheduleRows(keys []string, pool timetable.Pool) []export.ScheduleRow {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var rows []export.ScheduleRow
	for _, key := range sorted {
		course, err := pool.Lookup(key)
		if err != nil {
			continue
		}
		for _, session := range course.Sessions {
			rows = append(rows, export.ScheduleRow{
				Course:   course.Key,
				Name:     course.Name,
				Day:      session.Weekday.String(),
				Start:    timetable.MinutesToClock(session.Start),
				End:      timetable.MinutesToClock(session.End),
				Parity:   string(session.Parity),
				Location: session.Location,
			})
		}
	}
	return rows
}

func (s *ExportService) renderCSV(keys []string, pool timetable.Pool) (*ExportArtifact, error) {
	raw, err := s.csv.RenderSchedule(scheduleRows(keys, pool))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &ExportArtifact{ContentType: "text/csv", Filename: "schedule.csv", Data: raw}, nil
}

func (s *ExportService) renderPDF(keys []string, pool timetable.Pool) (*ExportArtifact, error) {
	days := make([]string, timetable.NumWeekdays)
	for d := 0; d < timetable.NumWeekdays; d++ {
		days[d] = timetable.Weekday(d).String()
	}
	slotLabels := timetable.GridSlots()

	cells := make([][]string, len(slotLabels))
	for i := range cells {
		cells[i] = make([]string, len(days))
	}

	for _, key := range keys {
		course, err := pool.Lookup(key)
		if err != nil {
			continue
		}
		for _, session := range course.Sessions {
			label := course.Key
			if session.Parity != timetable.ParityNone {
				label += " (" + string(session.Parity) + ")"
			}
			for minute := session.Start; minute < session.End; minute += timetable.SlotMinutes {
				row := (minute - timetable.GridStartMinutes) / timetable.SlotMinutes
				if row < 0 || row >= len(cells) {
					continue
				}
				cell := &cells[row][int(session.Weekday)]
				if *cell == "" {
					*cell = label
				} else if !strings.Contains(*cell, label) {
					*cell += " / " + label
				}
			}
		}
	}

	raw, err := s.pdf.RenderWeekly("Weekly Schedule", days, slotLabels, cells, scheduleRows(keys, pool))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return &ExportArtifact{ContentType: "application/pdf", Filename: "schedule.pdf", Data: raw}, nil
}
