package keyboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/go-telegram/bot/models"
)

// Префиксы callback data. Аргументы разделяются двоеточием.
const (
	CallbackAction       = "act" // act:<action>:<appointment id>
	CallbackResult       = "res" // res:<appointment id>:<result>
	CallbackDownload     = "dl"  // dl:<appointment id>
	CallbackAdminDelete  = "del" // del:<appointment id>
	CallbackBookLecturer = "bl"  // bl:<lecturer id>, 0 - любой
	CallbackBookDate     = "bd"  // bd:<YYYY-MM-DD>
	CallbackBookDuration = "bm"  // bm:<minutes>
	CallbackBookTime     = "bt"  // bt:<minutes since midnight>
	CallbackBookType     = "bk"  // bk:<consultation type>
	CallbackSlotDelete   = "sd"  // sd:<slot id>
	CallbackBatch        = "bw"  // bw:<morning|afternoon|both>
)

// Варианты окон пачки
const (
	BatchMorning   = "morning"
	BatchAfternoon = "afternoon"
	BatchBoth      = "both"
)

// Durations длительности консультации на выбор, минуты
var Durations = []int{15, 30, 45, 60, 90}

// Data собирает callback data из префикса и аргументов
func Data(prefix string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, prefix)
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	return strings.Join(parts, ":")
}

// Parse разбирает callback data на префикс и аргументы
func Parse(data string) (string, []string) {
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}

// ParseID аргумент с номером idx как int64
func ParseID(args []string, idx int) (int64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing argument %d", idx)
	}
	return strconv.ParseInt(args[idx], 10, 64)
}

var actionLabels = map[lifecycle.Action]string{
	lifecycle.ActionApprove:        "✅ Подтвердить",
	lifecycle.ActionReject:         "🚫 Отклонить",
	lifecycle.ActionCancel:         "❌ Отменить",
	lifecycle.ActionRequestCancel:  "🙏 Запросить отмену",
	lifecycle.ActionLecturerCancel: "❌ Отменить консультацию",
	lifecycle.ActionApproveCancel:  "✅ Принять отмену",
	lifecycle.ActionDenyCancel:     "↩️ Оставить в силе",
	lifecycle.ActionComplete:       "🏁 Завершить",
}

// ActionLabel подпись кнопки действия
func ActionLabel(action lifecycle.Action) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return string(action)
}

// Appointment кнопки допустимых действий над записью, по две в ряд
func Appointment(a *model.Appointment, actions []lifecycle.Action, admin bool) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(actions))
	for _, action := range actions {
		buttons = append(buttons, Button(ActionLabel(action), Data(CallbackAction, action, a.ID)))
	}

	b := NewBuilder().Grid(2, buttons...)
	if link := meetingLink(a); link != "" {
		b.Row(URLButton("🔗 Подключиться", link))
	}
	if len(a.Attachments) > 0 {
		b.Row(Button("📎 Вложение", Data(CallbackDownload, a.ID)))
	}
	if admin {
		b.Row(Button("🗑 Удалить", Data(CallbackAdminDelete, a.ID)))
	}
	if b.Empty() {
		return nil
	}
	return b.Build()
}

// meetingLink ссылка на встречу из сообщения преподавателя для онлайн-консультации
func meetingLink(a *model.Appointment) string {
	if a.ConsultationType != model.ConsultationRemote || a.Status != model.StatusApproved {
		return ""
	}
	note := strings.TrimSpace(a.FeedbackNote)
	if !strings.HasPrefix(note, "https://") && !strings.HasPrefix(note, "http://") {
		return ""
	}
	return note
}

// Results выбор итога консультации
func Results(appointmentID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().Row(
		Button("✅ Вопрос решён", Data(CallbackResult, appointmentID, model.ResultSolved)),
		Button("🙈 Студент не пришёл", Data(CallbackResult, appointmentID, model.ResultStudentAbsent)),
	).Build()
}

// Lecturers выбор преподавателя, первая кнопка - автоматическое назначение
func Lecturers(lecturers []*model.User) *models.InlineKeyboardMarkup {
	b := NewBuilder().Row(Button("🎲 Любой преподаватель", Data(CallbackBookLecturer, 0)))
	for _, l := range lecturers {
		b.Row(Button("👨‍🏫 "+l.FullName(), Data(CallbackBookLecturer, l.ID)))
	}
	return b.Build()
}

// Dates ближайшие days дней начиная с from
func Dates(from time.Time, days int) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		buttons = append(buttons, Button(day.Format("02.01"), Data(CallbackBookDate, day.Format(model.DateLayout))))
	}
	return NewBuilder().Grid(4, buttons...).Build()
}

func DurationChoice() *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(Durations))
	for _, d := range Durations {
		buttons = append(buttons, Button(fmt.Sprintf("%d мин", d), Data(CallbackBookDuration, d)))
	}
	return NewBuilder().Grid(3, buttons...).Build()
}

// Times кнопки времени начала; в data минуты, чтобы не спорить с разделителем
func Times(times []model.Clock) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(times))
	for _, t := range times {
		buttons = append(buttons, Button(t.String(), Data(CallbackBookTime, int(t))))
	}
	return NewBuilder().Grid(4, buttons...).Build()
}

func ConsultationTypes() *models.InlineKeyboardMarkup {
	return NewBuilder().Row(
		Button("🏫 Очно", Data(CallbackBookType, model.ConsultationInPerson)),
		Button("💻 Онлайн", Data(CallbackBookType, model.ConsultationRemote)),
	).Build()
}

// Slots кнопки удаления свободных слотов
func Slots(slots []*model.AvailabilitySlot) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, s := range slots {
		if s.Booked {
			continue
		}
		label := fmt.Sprintf("🗑 %s %s-%s", s.Date, s.StartTime, s.EndTime)
		b.Row(Button(label, Data(CallbackSlotDelete, s.ID)))
	}
	if b.Empty() {
		return nil
	}
	return b.Build()
}

func BatchWindows() *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button("🌅 Утро 07:00-11:30", Data(CallbackBatch, BatchMorning))).
		Row(Button("🌇 День 13:30-17:30", Data(CallbackBatch, BatchAfternoon))).
		Row(Button("📆 Утро и день", Data(CallbackBatch, BatchBoth))).
		Build()
}
