package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Clock время суток в минутах от полуночи
type Clock int

// LastMinute последняя минута суток, больше Clock не бывает
const LastMinute = Clock(23*60 + 59)

// DateLayout формат даты во всех контрактах
const DateLayout = "2006-01-02"

// ParseClock разбирает время в формате HH:MM
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	return Clock(hour*60 + minute), nil
}

// MustClock как ParseClock, но паникует на ошибке. Только для констант
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NewClock собирает время из часов и минут
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// InDay время лежит в пределах 00:00-23:59
func (c Clock) InDay() bool {
	return c >= 0 && c <= LastMinute
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add сдвигает время на указанное количество минут
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("clock must be a string: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan читает значение из колонки time (в запросах приводится к тексту HH24:MI)
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClock(firstHHMM(v))
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		parsed, err := ParseClock(firstHHMM(string(v)))
		if err != nil {
			return err
		}
		*c = parsed
	case int64:
		*c = Clock(v)
	default:
		return fmt.Errorf("cannot scan %T into Clock", src)
	}
	return nil
}

// Value пишет время как HH:MM, postgres приводит его к time
func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// firstHHMM отрезает секунды у "HH:MM:SS"
func firstHHMM(s string) string {
	if len(s) > 5 && s[2] == ':' {
		return s[:5]
	}
	return s
}
