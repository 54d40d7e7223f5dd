// Package export выгружает записи в iCalendar для подписки из календаря
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const productID = "-//consult_portal//appointments//RU"

// uidNamespace фиксирован, чтобы UID записи не менялся между выгрузками
var uidNamespace = uuid.MustParse("9a4f0a57-3c1e-4b8e-9a39-6a1c2f1e5d10")

// EventUID стабильный UID события для записи
func EventUID(appointmentID int64) string {
	return uuid.NewSHA1(uidNamespace, []byte(strconv.FormatInt(appointmentID, 10))).String()
}

// Calendar собирает календарь из действующих записей. Отменённые и отклонённые пропускаются.
func Calendar(appointments []*model.Appointment, loc *time.Location, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, a := range appointments {
		if !a.Status.IsActive() {
			continue
		}
		event, err := newEvent(a, loc, stamp)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", a.ID, err)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	return cal, nil
}

// Write кодирует календарь в w
func Write(w io.Writer, appointments []*model.Appointment, loc *time.Location, stamp time.Time) error {
	cal, err := Calendar(appointments, loc, stamp)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func newEvent(a *model.Appointment, loc *time.Location, stamp time.Time) (*ical.Event, error) {
	day, err := time.ParseInLocation(model.DateLayout, a.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	start := day.Add(time.Duration(a.StartTime) * time.Minute)
	end := day.Add(time.Duration(a.EndTime) * time.Minute)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, EventUID(a.ID))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	event.Props.SetText(ical.PropSummary, summary(a))
	event.Props.SetText(ical.PropStatus, eventStatus(a.Status))

	if a.Reason != "" {
		event.Props.SetText(ical.PropDescription, a.Reason)
	}
	if a.FeedbackNote != "" {
		event.Props.SetText(ical.PropLocation, a.FeedbackNote)
	}

	return event, nil
}

func summary(a *model.Appointment) string {
	parts := []string{"Консультация"}
	if a.LecturerName != "" {
		parts = append(parts, a.LecturerName)
	}
	if a.StudentName != "" {
		parts = append(parts, a.StudentName)
	}
	return strings.Join(parts, " · ")
}

func eventStatus(status model.AppointmentStatus) string {
	switch status {
	case model.StatusApproved, model.StatusCompleted:
		return "CONFIRMED"
	case model.StatusCanceled, model.StatusRejected:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}
