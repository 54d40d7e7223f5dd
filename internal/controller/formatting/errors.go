package formatting

import "github.com/Freeeeeet/consult_portal/internal/service"

var errorTexts = map[string]string{
	"conflict":              "❌ Время пересекается с уже существующим",
	"invalid_interval":      "❌ Время начала должно быть раньше окончания",
	"invalid_query":         "❌ Неверная дата или длительность",
	"invalid_range":         "❌ Неверный диапазон дат",
	"no_windows":            "❌ Выберите утро, день или оба окна",
	"batch_too_large":       "❌ Слишком длинный диапазон, максимум год",
	"illegal_transition":    "❌ Это действие недоступно в текущем статусе",
	"missing_message":       "❌ Укажите место или ссылку на встречу",
	"missing_cancel_reason": "❌ Укажите причину отмены",
	"invalid_result":        "❌ Итог может быть только «решён» или «не пришёл»",
	"slot_booked":           "❌ На этот слот уже есть запись",
	"batch_in_progress":     "⏳ Генерация уже идёт, дождитесь окончания",
	"not_found":             "❌ Не найдено",
	"forbidden":             "❌ У вас нет прав на это действие",
	"invalid_input":         "❌ Проверьте введённые данные",
}

// ErrorMessage текст для пользователя по причине ошибки
func ErrorMessage(err error) string {
	if service.Classify(err) == service.CategoryTransport {
		return "⚠️ Сервис временно недоступен. Попробуйте позже."
	}
	if text, ok := errorTexts[service.Code(err)]; ok {
		return text
	}
	return "❌ Произошла ошибка"
}
