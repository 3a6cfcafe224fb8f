package appointments

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/apptcal/internal/apperr"
	"github.com/starford/apptcal/internal/models"
)

// singleLine rejects titles that would split a persisted record in two.
var singleLine = regexp.MustCompile(`^[^\r\n]*$`)

// Input is an unvalidated appointment as entered by a user. An empty Date
// means no date was picked.
type Input struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Appointment validates in and converts it. Checks run in a fixed order so
// callers see the first applicable failure: missing fields, then title
// line breaks, then time format, then date, then start/end ordering.
func (in Input) Appointment() (models.Appointment, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Date, validation.Required),
		validation.Field(&in.Start, validation.Required),
		validation.Field(&in.End, validation.Required),
	); err != nil {
		return models.Appointment{}, fmt.Errorf("%w: %s", apperr.ErrMissingField, err.Error())
	}

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Match(singleLine).Error("must not contain line breaks")),
	); err != nil {
		return models.Appointment{}, fmt.Errorf("%w: %s", apperr.ErrInvalidTitle, err.Error())
	}

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Start, validation.Match(models.ClockPattern).Error("must be HH:mm")),
		validation.Field(&in.End, validation.Match(models.ClockPattern).Error("must be HH:mm")),
	); err != nil {
		return models.Appointment{}, fmt.Errorf("%w: %s", apperr.ErrInvalidTimeFormat, err.Error())
	}

	date, err := models.ParseDate(in.Date)
	if err != nil {
		return models.Appointment{}, err
	}
	start, err := models.ParseClock(in.Start)
	if err != nil {
		return models.Appointment{}, err
	}
	end, err := models.ParseClock(in.End)
	if err != nil {
		return models.Appointment{}, err
	}
	if !start.Before(end) {
		return models.Appointment{}, fmt.Errorf("%w: %s is not before %s", apperr.ErrOrderingViolation, start, end)
	}

	return models.Appointment{Title: in.Title, Date: date, Start: start, End: end}, nil
}

// Validate reports the same error as Appointment without building a value.
func (in Input) Validate() error {
	_, err := in.Appointment()
	return err
}
