package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
)

// Appointment карточка записи
func Appointment(a *model.Appointment) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📌 Запись #%d\n", a.ID)
	fmt.Fprintf(&sb, "%s\n\n", GetStatusDisplay(a.Status))
	fmt.Fprintf(&sb, "📅 %s, %s-%s\n", Date(a.Date), a.StartTime, a.EndTime)
	fmt.Fprintf(&sb, "%s\n", ConsultationType(a.ConsultationType))

	if a.StudentName != "" {
		fmt.Fprintf(&sb, "🎓 %s", a.StudentName)
		if a.StudentCode != "" {
			fmt.Fprintf(&sb, " (%s)", a.StudentCode)
		}
		sb.WriteString("\n")
	}
	if a.LecturerID == nil {
		sb.WriteString("👨‍🏫 Преподаватель будет назначен\n")
	} else if a.LecturerName != "" {
		fmt.Fprintf(&sb, "👨‍🏫 %s\n", a.LecturerName)
	}

	fmt.Fprintf(&sb, "\n💬 %s\n", a.Reason)

	if a.FeedbackNote != "" {
		fmt.Fprintf(&sb, "📍 %s\n", a.FeedbackNote)
	}
	if a.CancelReason != "" {
		fmt.Fprintf(&sb, "✋ Причина отмены: %s\n", a.CancelReason)
	}
	if result := Result(a.ConsultationResult); result != "" {
		fmt.Fprintf(&sb, "🏁 Итог: %s\n", result)
	}
	if a.ResultNote != "" {
		fmt.Fprintf(&sb, "📝 %s\n", a.ResultNote)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Slot строка слота в списке
func Slot(s *model.AvailabilitySlot) string {
	mark := "🟢"
	if s.Booked {
		mark = "🔴"
	}
	return fmt.Sprintf("%s %s %s-%s", mark, Date(s.Date), s.StartTime, s.EndTime)
}

// Batch итог пакетной генерации
func Batch(r *schedule.BatchResult) string {
	text := fmt.Sprintf("📆 Создано слотов: %d из %d", r.Succeeded, r.Attempted)
	if failed := r.Failed(); failed > 0 {
		text += fmt.Sprintf("\n⚠️ Пропущено: %d (пересечения или ошибки)", failed)
	}
	return text
}

// Date YYYY-MM-DD -> "Пн, 20.10.2026"; нераспознанная дата возвращается как есть
func Date(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return weekdayShort(t.Weekday()) + ", " + t.Format("02.01.2006")
}

func weekdayShort(d time.Weekday) string {
	return [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}[d]
}
