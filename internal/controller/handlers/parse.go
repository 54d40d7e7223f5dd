package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/service"
)

// parseDate принимает YYYY-MM-DD, DD.MM.YYYY или DD.MM (ближайшая такая дата не раньше today)
func parseDate(text string, today time.Time) (string, error) {
	text = strings.TrimSpace(text)

	for _, layout := range []string{model.DateLayout, "02.01.2006"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(model.DateLayout), nil
		}
	}

	t, err := time.Parse("02.01", text)
	if err != nil {
		return "", fmt.Errorf("date %q: %w", text, service.ErrInvalidInput)
	}

	day := time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(start) {
		day = day.AddDate(1, 0, 0)
	}
	return day.Format(model.DateLayout), nil
}

// parseSlot "2026-10-20 09:00-11:00" или "2026-10-20 09:00 11:00"
func parseSlot(text string, today time.Time) (model.SlotRequest, error) {
	fields := strings.Fields(strings.ReplaceAll(text, "-", " - "))
	fields = dropDashes(fields)

	// дата в формате YYYY-MM-DD распалась на части
	if len(fields) == 5 {
		fields = append([]string{strings.Join(fields[:3], "-")}, fields[3:]...)
	}
	if len(fields) != 3 {
		return model.SlotRequest{}, fmt.Errorf("slot %q: %w", text, service.ErrInvalidInput)
	}

	date, err := parseDate(fields[0], today)
	if err != nil {
		return model.SlotRequest{}, err
	}
	start, err := model.ParseClock(fields[1])
	if err != nil {
		return model.SlotRequest{}, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}
	end, err := model.ParseClock(fields[2])
	if err != nil {
		return model.SlotRequest{}, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}

	return model.SlotRequest{Date: date, StartTime: start, EndTime: end}, nil
}

// parseRange две даты через пробел или дефис, обе включительно
func parseRange(text string, today time.Time) (string, string, error) {
	fields := strings.Fields(strings.ReplaceAll(text, " - ", " "))
	if len(fields) != 2 {
		return "", "", fmt.Errorf("range %q: %w", text, service.ErrInvalidInput)
	}

	from, err := parseDate(fields[0], today)
	if err != nil {
		return "", "", err
	}
	to, err := parseDate(fields[1], today)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func dropDashes(fields []string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != "-" {
			out = append(out, f)
		}
	}
	return out
}
