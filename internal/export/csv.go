// Package export is the flat-file boundary: goals flattened to CSV rows
// and back. The format predates tabs, so imported goals may arrive with
// no tab and are adopted by the first available one.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/models"
)

// Header is the exact column set of the export format, in order.
var Header = []string{"id", "title", "startDate", "endDate", "color", "progress", "order", "notes"}

// progressSep joins the progress dates into a single field value.
const progressSep = "|"

// ValidationError reports rows rejected during import. No partial import
// happens: a single invalid row aborts the whole file.
type ValidationError struct {
	InvalidRows int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("import aborted: %d invalid row(s)", e.InvalidRows)
}

// WriteGoals emits every goal as one CSV row under the header. Progress
// is pipe-joined, notes are embedded as a JSON object, dates are RFC3339.
func WriteGoals(w io.Writer, goals []models.Goal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, g := range goals {
		notes := g.Notes
		if notes == nil {
			notes = map[string]string{}
		}
		notesJSON, err := json.Marshal(notes)
		if err != nil {
			return err
		}

		row := []string{
			g.ID.String(),
			g.Title,
			g.StartDate.Format(time.RFC3339),
			g.EndDate.Format(time.RFC3339),
			g.Color,
			strings.Join(g.Progress, progressSep),
			strconv.FormatFloat(g.Order, 'f', -1, 64),
			string(notesJSON),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadGoals parses an export file back into goals. Every row must carry a
// non-empty id, title, startDate, endDate and color; any row that does
// not aborts the import with a ValidationError counting the bad rows.
// A missing or unparseable order falls back to the row index, and a
// malformed notes field is logged and replaced by an empty mapping
// without failing the row. Goals come back with a zero TabID; the caller
// backfills the default tab.
func ReadGoals(r io.Reader, logger *log.Logger) ([]models.Goal, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"id", "title", "startDate", "endDate", "color"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("header missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var goals []models.Goal
	invalid := 0
	for rowIndex := 0; ; rowIndex++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		goal, ok := parseRow(row, rowIndex, field, logger)
		if !ok {
			invalid++
			continue
		}
		goals = append(goals, goal)
	}

	if invalid > 0 {
		return nil, &ValidationError{InvalidRows: invalid}
	}
	return goals, nil
}

func parseRow(row []string, rowIndex int, field func([]string, string) string, logger *log.Logger) (models.Goal, bool) {
	id, err := uuid.Parse(field(row, "id"))
	if err != nil {
		return models.Goal{}, false
	}
	title := field(row, "title")
	color := field(row, "color")
	if title == "" || color == "" {
		return models.Goal{}, false
	}
	startDate, err := parseDate(field(row, "startDate"))
	if err != nil {
		return models.Goal{}, false
	}
	endDate, err := parseDate(field(row, "endDate"))
	if err != nil {
		return models.Goal{}, false
	}

	order, err := strconv.ParseFloat(field(row, "order"), 64)
	if err != nil {
		order = float64(rowIndex)
	}

	notes := map[string]string{}
	if raw := field(row, "notes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &notes); err != nil {
			if logger != nil {
				logger.Printf("row %d: unparseable notes, using empty mapping: %v", rowIndex, err)
			}
			notes = map[string]string{}
		}
	}

	var progress []string
	for _, d := range strings.Split(field(row, "progress"), progressSep) {
		if d != "" {
			progress = append(progress, d)
		}
	}
	if progress == nil {
		progress = []string{}
	}

	return models.Goal{
		ID:        id,
		Title:     title,
		StartDate: startDate,
		EndDate:   endDate,
		Color:     color,
		Progress:  progress,
		Order:     order,
		Notes:     notes,
	}, true
}

// parseDate accepts the RFC3339 timestamps the exporter writes, plus bare
// YYYY-MM-DD dates from hand-edited files.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
