// Package ical exports the appointment list as an iCalendar (RFC 5545) feed
// so it can be subscribed to from calendar applications.
package ical

import (
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/starford/apptcal/internal/models"
	"github.com/starford/apptcal/internal/parser"
)

// DefaultProductID identifies the generator in PRODID.
const DefaultProductID = "-//starford//apptcal//EN"

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/starford/apptcal"))

// Options controls how appointments are turned into events.
type Options struct {
	// Location interprets the zone-less dates and times. Defaults to time.Local.
	Location *time.Location
	// Name is the calendar display name (X-WR-CALNAME).
	Name string
	// ProductID overrides DefaultProductID.
	ProductID string
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
}

// Calendar builds a calendar with one VEVENT per appointment.
func Calendar(appts []models.Appointment, opts Options) *ics.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	prodID := opts.ProductID
	if prodID == "" {
		prodID = DefaultProductID
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	stamp := now().UTC()
	seen := make(map[string]int, len(appts))
	for _, a := range appts {
		line := parser.FormatLine(a)
		n := seen[line]
		seen[line] = n + 1

		ev := cal.AddEvent(UID(a, n))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(a.StartAt(loc))
		ev.SetEndAt(a.EndAt(loc))
		ev.SetSummary(a.Title)
	}
	return cal
}

// Write serialises the calendar for appts to w.
func Write(w io.Writer, appts []models.Appointment, opts Options) error {
	return Calendar(appts, opts).SerializeTo(w)
}

// Export returns the serialised calendar as a string.
func Export(appts []models.Appointment, opts Options) string {
	var b strings.Builder
	_ = Write(&b, appts, opts)
	return b.String()
}

// UID returns a stable event UID derived from the appointment's content.
// occurrence distinguishes identical duplicates (0 for the first copy), so
// re-exporting an unchanged list yields the same UIDs.
func UID(a models.Appointment, occurrence int) string {
	name := parser.FormatLine(a) + "#" + strconv.Itoa(occurrence)
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@apptcal"
}
