package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/export"
	"github.com/Freeeeeet/consult_portal/internal/filter"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const maxAttachmentSize = 10 << 20

type Handler struct {
	collab   service.Collaborator
	resolver *schedule.Resolver
	batch    *schedule.BatchGenerator
	loc      *time.Location
	logger   *zap.Logger
}

func NewHandler(collab service.Collaborator, loc *time.Location, concurrency int, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		collab:   collab,
		resolver: schedule.NewResolver(collab),
		batch:    schedule.NewBatchGenerator(collab, concurrency),
		loc:      loc,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/slots", h.ListSlots)
	api.GET("/slots/free-start-times", h.FreeStartTimes)
	api.GET("/slots/valid-start-times", h.ValidStartTimes)

	lecturer := api.Group("", RequireRole(model.RoleLecturer))
	lecturer.POST("/slots", h.CreateSlot)
	lecturer.POST("/slots/batch", h.GenerateBatch)
	lecturer.DELETE("/slots/:id", h.DeleteSlot)
	lecturer.POST("/appointments/:id/approve", h.Approve)
	lecturer.POST("/appointments/:id/reject", h.Reject)
	lecturer.POST("/appointments/:id/lecturer-cancel", h.LecturerCancel)
	lecturer.POST("/appointments/:id/cancel-request/approve", h.ApproveCancelRequest)
	lecturer.POST("/appointments/:id/cancel-request/reject", h.RejectCancelRequest)
	lecturer.POST("/appointments/:id/result", h.RecordResult)

	student := api.Group("", RequireRole(model.RoleStudent))
	student.POST("/appointments", h.CreateAppointment)
	student.POST("/appointments/:id/cancel", h.Cancel)

	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/ics", h.ExportCalendar)
	api.POST("/appointments/:id/attachment", h.UploadAttachment)
	api.GET("/appointments/:id/attachment", h.DownloadAttachment)

	admin := api.Group("/admin", RequireRole(model.RoleAdmin))
	admin.DELETE("/appointments/:id", h.AdminDelete)
}

// -- Slots --

func (h *Handler) ListSlots(c echo.Context) error {
	var q model.SlotQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	slots, err := h.collab.ListSlots(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(slots))
}

func (h *Handler) FreeStartTimes(c echo.Context) error {
	q, err := startTimeQuery(c)
	if err != nil {
		return err
	}
	times, err := h.collab.FreeStartTimes(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(times))
}

// ValidStartTimes свободное время с откатом на стандартную сетку
func (h *Handler) ValidStartTimes(c echo.Context) error {
	q, err := startTimeQuery(c)
	if err != nil {
		return err
	}
	times, err := h.resolver.Resolve(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, times)
}

func (h *Handler) CreateSlot(c echo.Context) error {
	var req model.SlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	slot, err := h.collab.CreateSlot(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, slot)
}

type batchRequest struct {
	From      string `json:"from" validate:"required,datetime=2006-01-02"`
	To        string `json:"to" validate:"required,datetime=2006-01-02"`
	Morning   bool   `json:"morning"`
	Afternoon bool   `json:"afternoon"`
}

type batchResponse struct {
	*schedule.BatchResult
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// GenerateBatch создаёт приёмные часы на диапазон дат; частичный отказ не ошибка
func (h *Handler) GenerateBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	actor, err := auth.ActorFrom(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	existing, err := h.collab.ListSlots(ctx, model.SlotQuery{LecturerID: actor.UserID, From: req.From, To: req.To})
	if err != nil {
		return err
	}

	result, err := h.batch.Generate(ctx, schedule.BatchRequest{
		LecturerID: actor.UserID,
		From:       req.From,
		To:         req.To,
		Flags:      schedule.BatchFlags{Morning: req.Morning, Afternoon: req.Afternoon},
		Existing:   schedule.SlotEntries(existing),
	})
	if err != nil {
		return err
	}

	resp := batchResponse{BatchResult: result, Failed: result.Failed(), Errors: []string{}}
	for _, itemErr := range multierr.Errors(result.ItemErrs) {
		resp.Errors = append(resp.Errors, itemErr.Error())
	}

	h.logger.Info("Batch generated",
		zap.Stringer("batch_id", result.BatchID),
		zap.Int64("lecturer_id", actor.UserID),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
	)

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteSlot(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.collab.DeleteSlot(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Appointments --

// ListAppointments поддерживает фильтры search, status (через запятую), date, from, to
func (h *Handler) ListAppointments(c echo.Context) error {
	appointments, err := h.collab.ListAppointments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(filter.Apply(appointments, criteria(c))))
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req model.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.collab.CreateAppointment(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

type actionRequest struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
	Result  string `json:"result"`
	Note    string `json:"note"`
}

func (h *Handler) Approve(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, body actionRequest) error {
		return h.collab.Approve(c.Request().Context(), id, body.Message)
	})
}

func (h *Handler) Reject(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, _ actionRequest) error {
		return h.collab.Reject(c.Request().Context(), id)
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, body actionRequest) error {
		return h.collab.StudentCancel(c.Request().Context(), id, body.Reason)
	})
}

func (h *Handler) LecturerCancel(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, _ actionRequest) error {
		return h.collab.LecturerCancel(c.Request().Context(), id)
	})
}

func (h *Handler) ApproveCancelRequest(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, _ actionRequest) error {
		return h.collab.ApproveCancelRequest(c.Request().Context(), id)
	})
}

func (h *Handler) RejectCancelRequest(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, _ actionRequest) error {
		return h.collab.RejectCancelRequest(c.Request().Context(), id)
	})
}

func (h *Handler) RecordResult(c echo.Context) error {
	return h.act(c, func(c echo.Context, id int64, body actionRequest) error {
		return h.collab.RecordResult(c.Request().Context(), id, model.ConsultationResult(body.Result), body.Note)
	})
}

// act общий разбор id и тела для действий над записью
func (h *Handler) act(c echo.Context, do func(echo.Context, int64, actionRequest) error) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var body actionRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	if err := do(c, id, body); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UploadAttachment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if header.Size > maxAttachmentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	err = h.collab.UploadAttachment(c.Request().Context(), &model.Attachment{
		AppointmentID: id,
		Filename:      header.Filename,
		ContentType:   header.Header.Get(echo.HeaderContentType),
		Data:          data,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DownloadAttachment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	att, err := h.collab.DownloadAttachment(c.Request().Context(), id)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", att.Filename))
	return c.Blob(http.StatusOK, att.ContentType, att.Data)
}

func (h *Handler) AdminDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.collab.AdminDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportCalendar записи пользователя в формате iCalendar
func (h *Handler) ExportCalendar(c echo.Context) error {
	appointments, err := h.collab.ListAppointments(c.Request().Context())
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/calendar; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="appointments.ics"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.Write(c.Response(), appointments, h.loc, time.Now())
}

// -- helpers --

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func startTimeQuery(c echo.Context) (schedule.StartTimeQuery, error) {
	q := schedule.StartTimeQuery{Date: c.QueryParam("date")}

	duration, err := strconv.Atoi(c.QueryParam("duration"))
	if err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
	}
	q.Duration = duration

	if raw := c.QueryParam("lecturer_id"); raw != "" {
		lecturerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid lecturer_id")
		}
		q.LecturerID = &lecturerID
	}
	return q, nil
}

func criteria(c echo.Context) filter.Criteria {
	cr := filter.Criteria{
		SearchTerm: c.QueryParam("search"),
		Date:       c.QueryParam("date"),
		From:       c.QueryParam("from"),
		To:         c.QueryParam("to"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			cr.Statuses = append(cr.Statuses, model.AppointmentStatus(strings.TrimSpace(s)))
		}
	}
	return cr
}

// nonNil чтобы пустой список отдавался как [], а не null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
