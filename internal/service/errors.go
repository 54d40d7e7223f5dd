package service

import (
	"errors"

	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
)

var (
	// ErrRejected авторитетная сторона отклонила операцию
	ErrRejected = errors.New("rejected by server")
	// ErrTransport сеть или сервер недоступны, операцию можно повторить
	ErrTransport = errors.New("transport failure")

	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("operation not permitted for this user")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSlotBooked      = errors.New("slot has an active appointment")
	ErrBatchInProgress = errors.New("batch generation already in progress")
)

// Category класс ошибки для показа пользователю
type Category int

const (
	CategoryNone Category = iota
	// CategoryValidation локальная проверка, удалённый вызов не выполнялся
	CategoryValidation
	// CategoryRemote отказ сервера, после него список перезагружается
	CategoryRemote
	// CategoryTransport сбой связи
	CategoryTransport
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryRemote:
		return "remote"
	case CategoryTransport:
		return "transport"
	default:
		return "none"
	}
}

var localErrors = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrForbidden,
	ErrSlotBooked,
	ErrBatchInProgress,
	schedule.ErrInvalidInterval,
	schedule.ErrConflict,
	schedule.ErrInvalidQuery,
	schedule.ErrInvalidRange,
	schedule.ErrNoWindows,
	schedule.ErrBatchTooLarge,
	lifecycle.ErrIllegalTransition,
	lifecycle.ErrMissingMessage,
	lifecycle.ErrMissingCancelReason,
	lifecycle.ErrInvalidResult,
}

// Classify относит ошибку к одной из категорий.
// Отказ сервера проверяется первым: он может оборачивать те же причины, что и локальная проверка.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrTransport):
		return CategoryTransport
	case errors.Is(err, ErrRejected):
		return CategoryRemote
	}
	for _, target := range localErrors {
		if errors.Is(err, target) {
			return CategoryValidation
		}
	}
	return CategoryTransport
}

// Reject помечает причину как отказ авторитетной стороны
func Reject(cause error) error {
	if cause == nil {
		return nil
	}
	return &RejectionError{Cause: cause}
}

// RejectionError отказ сервера с исходной причиной
type RejectionError struct {
	Cause error
}

func (e *RejectionError) Error() string {
	return "rejected: " + e.Cause.Error()
}

func (e *RejectionError) Unwrap() []error {
	return []error{ErrRejected, e.Cause}
}

// Коды ошибок в ответах API. Порядок важен: первая совпавшая причина определяет код
var codes = []struct {
	code string
	err  error
}{
	{"conflict", schedule.ErrConflict},
	{"invalid_interval", schedule.ErrInvalidInterval},
	{"invalid_query", schedule.ErrInvalidQuery},
	{"invalid_range", schedule.ErrInvalidRange},
	{"no_windows", schedule.ErrNoWindows},
	{"batch_too_large", schedule.ErrBatchTooLarge},
	{"illegal_transition", lifecycle.ErrIllegalTransition},
	{"missing_message", lifecycle.ErrMissingMessage},
	{"missing_cancel_reason", lifecycle.ErrMissingCancelReason},
	{"invalid_result", lifecycle.ErrInvalidResult},
	{"slot_booked", ErrSlotBooked},
	{"batch_in_progress", ErrBatchInProgress},
	{"not_found", ErrNotFound},
	{"forbidden", ErrForbidden},
	{"invalid_input", ErrInvalidInput},
}

// Code машинный код причины ошибки
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// FromCode обратное к Code; неизвестный код даёт nil
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
