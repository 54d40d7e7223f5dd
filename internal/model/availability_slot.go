package model

import "time"

// AvailabilitySlot открытый интервал приёма преподавателя на конкретную дату
type AvailabilitySlot struct {
	ID         int64     `json:"id"`
	LecturerID int64     `json:"lecturer_id"`
	Date       string    `json:"date"` // YYYY-MM-DD
	StartTime  Clock     `json:"start_time"`
	EndTime    Clock     `json:"end_time"`
	Booked     bool      `json:"booked"`
	CreatedAt  time.Time `json:"created_at"`
}

// SlotRequest данные для создания слота
type SlotRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime Clock  `json:"start_time"`
	EndTime   Clock  `json:"end_time"`
}

// SlotQuery выборка слотов преподавателя. LecturerID = 0 - слоты текущего пользователя
type SlotQuery struct {
	LecturerID int64  `json:"lecturer_id" query:"lecturer_id"`
	From       string `json:"from" query:"from"`
	To         string `json:"to" query:"to"`
}
