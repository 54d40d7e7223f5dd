// Package formatting тексты сообщений бота
package formatting

import "github.com/Freeeeeet/consult_portal/internal/model"

// StatusDisplay emoji и подпись статуса записи
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

var statusDisplays = map[model.AppointmentStatus]StatusDisplay{
	model.StatusPending:         {"⏳", "Ожидает решения"},
	model.StatusApproved:        {"✅", "Подтверждена"},
	model.StatusRejected:        {"🚫", "Отклонена"},
	model.StatusCanceled:        {"❌", "Отменена"},
	model.StatusCancelRequested: {"🙏", "Запрошена отмена"},
	model.StatusCompleted:       {"✔️", "Проведена"},
}

func GetStatusDisplay(status model.AppointmentStatus) StatusDisplay {
	if display, ok := statusDisplays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

func ConsultationType(t model.ConsultationType) string {
	switch t {
	case model.ConsultationInPerson:
		return "🏫 Очно"
	case model.ConsultationRemote:
		return "💻 Онлайн"
	}
	return string(t)
}

func Result(r model.ConsultationResult) string {
	switch r {
	case model.ResultSolved:
		return "вопрос решён"
	case model.ResultUnsolved:
		return "вопрос не решён"
	case model.ResultStudentAbsent:
		return "студент не пришёл"
	case model.ResultCancelledByLecturer:
		return "отменена преподавателем"
	}
	return ""
}

func Role(r model.Role) string {
	switch r {
	case model.RoleStudent:
		return "🎓 Студент"
	case model.RoleLecturer:
		return "👨‍🏫 Преподаватель"
	case model.RoleStaff:
		return "🗂 Сотрудник"
	case model.RoleAdmin:
		return "🛠 Администратор"
	}
	return string(r)
}
