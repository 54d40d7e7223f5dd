package model

import "time"

type AppointmentStatus string

const (
	StatusPending         AppointmentStatus = "PENDING"          // Ожидает решения преподавателя
	StatusApproved        AppointmentStatus = "APPROVED"         // Подтверждена
	StatusRejected        AppointmentStatus = "REJECTED"         // Отклонена преподавателем
	StatusCanceled        AppointmentStatus = "CANCELED"         // Отменена
	StatusCancelRequested AppointmentStatus = "CANCEL_REQUESTED" // Студент запросил отмену
	StatusCompleted       AppointmentStatus = "COMPLETED"        // Консультация проведена
)

// AllStatuses порядок статусов для фильтров и отчётов
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusApproved,
	StatusCancelRequested,
	StatusCompleted,
	StatusRejected,
	StatusCanceled,
}

// IsTerminal проверяет что из статуса нет переходов
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCanceled || s == StatusCompleted
}

// IsActive активная запись занимает время преподавателя
func (s AppointmentStatus) IsActive() bool {
	return s != StatusCanceled && s != StatusRejected
}

func (s AppointmentStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ConsultationType string

const (
	ConsultationInPerson ConsultationType = "IN_PERSON"
	ConsultationRemote   ConsultationType = "REMOTE"
)

func (t ConsultationType) Valid() bool {
	return t == ConsultationInPerson || t == ConsultationRemote
}

type ConsultationResult string

const (
	ResultNone                ConsultationResult = ""
	ResultSolved              ConsultationResult = "SOLVED"
	ResultUnsolved            ConsultationResult = "UNSOLVED"
	ResultStudentAbsent       ConsultationResult = "STUDENT_ABSENT"
	ResultCancelledByLecturer ConsultationResult = "CANCELLED_BY_LECTURER"
)

type Appointment struct {
	ID                 int64              `json:"id"`
	StudentID          int64              `json:"student_id"`
	LecturerID         *int64             `json:"lecturer_id"` // nil - автоматическое назначение
	SlotID             *int64             `json:"slot_id"`
	Date               string             `json:"date"`
	StartTime          Clock              `json:"start_time"`
	EndTime            Clock              `json:"end_time"`
	ConsultationType   ConsultationType   `json:"consultation_type"`
	Reason             string             `json:"reason"`
	Attachments        []string           `json:"attachments"`
	Status             AppointmentStatus  `json:"status"`
	FeedbackNote       string             `json:"feedback_note"`
	CancelReason       string             `json:"cancel_reason"`
	ConsultationResult ConsultationResult `json:"consultation_result"`
	ResultNote         string             `json:"result_note"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	// Поля для отображения (заполняются join'ом, в таблице их нет)
	StudentName  string `json:"student_name,omitempty"`
	StudentCode  string `json:"student_code,omitempty"`
	LecturerName string `json:"lecturer_name,omitempty"`
	LecturerCode string `json:"lecturer_code,omitempty"`
}

// AppointmentRequest данные студента для новой записи
type AppointmentRequest struct {
	LecturerID       *int64           `json:"lecturer_id"`
	Date             string           `json:"date" validate:"required,datetime=2006-01-02"`
	Time             Clock            `json:"time"`
	Duration         int              `json:"duration" validate:"required,min=5,max=240"`
	Reason           string           `json:"reason" validate:"required,max=1000"`
	ConsultationType ConsultationType `json:"consultation_type" validate:"required,oneof=IN_PERSON REMOTE"`
}

// Attachment файл, приложенный к записи
type Attachment struct {
	AppointmentID int64  `json:"appointment_id"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	Data          []byte `json:"-"`
}
