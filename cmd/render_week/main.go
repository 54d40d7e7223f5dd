package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/render"
)

func main() {
	// Тестовая неделя с понедельника
	now := time.Now()
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, -1)
	}
	day := func(offset int) string {
		return monday.AddDate(0, 0, offset).Format("2006-01-02")
	}

	slots := []*model.AvailabilitySlot{
		{ID: 1, LecturerID: 1, Date: day(0), StartTime: model.NewClock(7, 0), EndTime: model.NewClock(11, 30)},
		{ID: 2, LecturerID: 1, Date: day(1), StartTime: model.NewClock(13, 30), EndTime: model.NewClock(17, 30)},
		{ID: 3, LecturerID: 1, Date: day(3), StartTime: model.NewClock(9, 0), EndTime: model.NewClock(10, 0), Booked: true},
	}

	appointments := []*model.Appointment{
		{ID: 10, Date: day(0), StartTime: model.NewClock(9, 0), EndTime: model.NewClock(9, 30), Status: model.StatusApproved, StudentName: "Иван Петров"},
		{ID: 11, Date: day(2), StartTime: model.NewClock(14, 0), EndTime: model.NewClock(14, 45), Status: model.StatusPending, StudentName: "Анна Смирнова"},
		{ID: 12, Date: day(3), StartTime: model.NewClock(9, 0), EndTime: model.NewClock(10, 0), Status: model.StatusCancelRequested, StudentName: "Олег Иванов"},
		{ID: 13, Date: day(4), StartTime: model.NewClock(10, 0), EndTime: model.NewClock(11, 0), Status: model.StatusCompleted, StudentName: "Мария Козлова"},
	}

	imageData, err := render.WeekPNG(render.Week{
		Start:        monday,
		Now:          now,
		Slots:        slots,
		Appointments: appointments,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка генерации: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("week.png", imageData, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка сохранения: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Изображение сохранено в week.png")
}
