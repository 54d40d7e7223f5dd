package server

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor HTTP-статус по коду причины
func statusFor(code string) int {
	switch code {
	case "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "conflict", "illegal_transition", "slot_booked", "batch_in_progress":
		return http.StatusConflict
	case "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errorResponse{Error: "internal error", Code: "internal"}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			body = errorResponse{Error: http.StatusText(status), Code: "http"}
			if msg, ok := httpErr.Message.(string); ok {
				body.Error = msg
			}
		} else if code := service.Code(err); code != "internal" {
			status = statusFor(code)
			body = errorResponse{Error: err.Error(), Code: code}
		} else {
			logger.Error("Unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if err := c.JSON(status, body); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}
