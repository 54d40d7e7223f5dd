package state

// UserState шаг диалога, в котором находится пользователь
type UserState string

const (
	StateNone UserState = ""

	// Запись на консультацию
	StateBookDate   UserState = "book_date"
	StateBookReason UserState = "book_reason"

	// Действия над записью, требующие текста
	StateApproveMessage UserState = "approve_message"
	StateCancelReason   UserState = "cancel_reason"
	StateResultNote     UserState = "result_note"

	// Слоты преподавателя
	StateAddSlot    UserState = "add_slot"
	StateBatchRange UserState = "batch_range"

	// Профиль
	StateLecturerCode UserState = "lecturer_code"
	StateStudentCode  UserState = "student_code"
	StateSearch       UserState = "search"
)

// Ключи временных данных диалога
const (
	KeyLecturerID    = "lecturer_id"
	KeyDate          = "date"
	KeyDuration      = "duration"
	KeyTime          = "time"
	KeyType          = "type"
	KeyAppointmentID = "appointment_id"
	KeyResult        = "result"
	KeyBatchFrom     = "batch_from"
	KeyBatchTo       = "batch_to"
)

// UserData временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]any
}
