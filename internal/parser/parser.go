// Package parser reads and writes the flat appointment file format: one
// appointment per line as "title,YYYY-MM-DD,HH:mm,HH:mm".
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/apptcal/internal/apperr"
	"github.com/starford/apptcal/internal/models"
)

// FieldCount is the number of comma-separated fields in a record.
const FieldCount = 4

// ErrFieldCount is returned for a line that does not split into FieldCount fields.
var ErrFieldCount = errors.New("parser: wrong field count")

// Skipped describes a line that could not be turned into an appointment.
type Skipped struct {
	Line int // 1-based
	Text string
	Err  error
}

// Result holds the output of parsing a whole file.
type Result struct {
	Appointments []models.Appointment
	Skipped      []Skipped
}

// Parse decodes every non-empty line of data. Lines that fail ParseLine are
// reported in Result.Skipped and do not stop the rest of the file loading.
func Parse(data []byte) *Result {
	res := &Result{Appointments: []models.Appointment{}}
	if len(data) == 0 {
		return res
	}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		a, err := ParseLine(line)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Line: i + 1, Text: line, Err: err})
			continue
		}
		res.Appointments = append(res.Appointments, a)
	}
	return res
}

// ParseLine decodes a single record. The returned appointment satisfies
// models.Appointment.Valid.
func ParseLine(line string) (models.Appointment, error) {
	fields := strings.Split(line, ",")
	if len(fields) != FieldCount {
		return models.Appointment{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), FieldCount)
	}
	return ParseFields(fields[0], fields[1], fields[2], fields[3])
}

// ParseFields builds an appointment from already separated text fields.
func ParseFields(title, date, start, end string) (models.Appointment, error) {
	if title == "" {
		return models.Appointment{}, fmt.Errorf("%w: title", apperr.ErrMissingField)
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return models.Appointment{}, err
	}
	s, err := models.ParseClock(start)
	if err != nil {
		return models.Appointment{}, err
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return models.Appointment{}, err
	}
	if !s.Before(e) {
		return models.Appointment{}, fmt.Errorf("%w: %s >= %s", apperr.ErrOrderingViolation, s, e)
	}
	return models.Appointment{Title: title, Date: d, Start: s, End: e}, nil
}

// FormatLine encodes a as a single record without the trailing newline.
// Commas in the title are written as-is and will break the record on reload.
func FormatLine(a models.Appointment) string {
	return strings.Join([]string{a.Title, a.Date.String(), a.Start.String(), a.End.String()}, ",")
}

// Format encodes appts one per line, each terminated by "\n".
func Format(appts []models.Appointment) []byte {
	var b strings.Builder
	for _, a := range appts {
		b.WriteString(FormatLine(a))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
