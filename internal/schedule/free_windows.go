package schedule

import (
	"slices"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

// FreeStartTimes перебирает свободные слоты с шагом step и возвращает времена начала,
// для которых [start, start+duration) помещается в слот и не задевает занятые интервалы
func FreeStartTimes(slots []*model.AvailabilitySlot, busy []Interval, duration, step int) []model.Clock {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var times []model.Clock
	for _, slot := range slots {
		if slot.Booked {
			continue
		}
		window := Interval{Start: slot.StartTime, End: slot.EndTime}
		for start := window.Start; start.Add(duration) <= window.End; start = start.Add(step) {
			candidate := Interval{Start: start, End: start.Add(duration)}
			if overlapsAny(candidate, busy) {
				continue
			}
			times = append(times, start)
		}
	}

	slices.Sort(times)
	return slices.Compact(times)
}

// ContainingSlot ищет свободный слот, целиком вмещающий интервал
func ContainingSlot(slots []*model.AvailabilitySlot, i Interval) *model.AvailabilitySlot {
	for _, slot := range slots {
		if slot.Booked {
			continue
		}
		if (Interval{Start: slot.StartTime, End: slot.EndTime}).Contains(i) {
			return slot
		}
	}
	return nil
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}
