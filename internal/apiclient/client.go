// Package apiclient REST-реализация service.Collaborator для клиентов,
// работающих с удалённым сервером портала.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// ErrSessionExpired токен истёк, нужен повторный вход
var ErrSessionExpired = errors.New("session expired")

// APIError ответ сервера с кодом ошибки
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

// Unwrap 4xx - отказ с исходной причиной, 5xx - сбой транспорта
func (e *APIError) Unwrap() []error {
	if e.Status >= http.StatusInternalServerError {
		return []error{service.ErrTransport}
	}
	errs := []error{service.ErrRejected}
	if cause := service.FromCode(e.Code); cause != nil {
		errs = append(errs, cause)
	}
	return errs
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

var _ service.Collaborator = (*Client)(nil)

func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
	}
}

func (c *Client) ListSlots(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error) {
	params := url.Values{}
	if q.LecturerID != 0 {
		params.Set("lecturer_id", strconv.FormatInt(q.LecturerID, 10))
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}

	var slots []*model.AvailabilitySlot
	if err := c.do(ctx, http.MethodGet, "/api/slots", params, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) FreeStartTimes(ctx context.Context, q schedule.StartTimeQuery) ([]model.Clock, error) {
	params := url.Values{}
	params.Set("date", q.Date)
	params.Set("duration", strconv.Itoa(q.Duration))
	if q.LecturerID != nil {
		params.Set("lecturer_id", strconv.FormatInt(*q.LecturerID, 10))
	}

	var times []model.Clock
	if err := c.do(ctx, http.MethodGet, "/api/slots/free-start-times", params, nil, &times); err != nil {
		return nil, err
	}
	return times, nil
}

func (c *Client) CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	if err := c.do(ctx, http.MethodPost, "/api/slots", nil, req, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (c *Client) DeleteSlot(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/slots/%d", id), nil, nil, nil)
}

func (c *Client) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	var appointments []*model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments", nil, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error) {
	var a model.Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", nil, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Approve(ctx context.Context, id int64, message string) error {
	return c.action(ctx, id, "approve", map[string]string{"message": message})
}

func (c *Client) Reject(ctx context.Context, id int64) error {
	return c.action(ctx, id, "reject", nil)
}

func (c *Client) StudentCancel(ctx context.Context, id int64, reason string) error {
	return c.action(ctx, id, "cancel", map[string]string{"reason": reason})
}

func (c *Client) LecturerCancel(ctx context.Context, id int64) error {
	return c.action(ctx, id, "lecturer-cancel", nil)
}

func (c *Client) ApproveCancelRequest(ctx context.Context, id int64) error {
	return c.action(ctx, id, "cancel-request/approve", nil)
}

func (c *Client) RejectCancelRequest(ctx context.Context, id int64) error {
	return c.action(ctx, id, "cancel-request/reject", nil)
}

func (c *Client) RecordResult(ctx context.Context, id int64, result model.ConsultationResult, note string) error {
	return c.action(ctx, id, "result", map[string]string{"result": string(result), "note": note})
}

func (c *Client) UploadAttachment(ctx context.Context, att *model.Attachment) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", att.Filename)
	if err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(att.Data); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}

	path := fmt.Sprintf("/api/appointments/%d/attachment", att.AppointmentID)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeError(resp)
}

func (c *Client) DownloadAttachment(ctx context.Context, appointmentID int64) (*model.Attachment, error) {
	path := fmt.Sprintf("/api/appointments/%d/attachment", appointmentID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := decodeError(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read attachment: %v", service.ErrTransport, err)
	}

	filename := appointmentFilename(resp.Header.Get("Content-Disposition"), appointmentID)
	return &model.Attachment{
		AppointmentID: appointmentID,
		Filename:      filename,
		ContentType:   resp.Header.Get("Content-Type"),
		Data:          data,
	}, nil
}

func (c *Client) AdminDelete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/appointments/%d", id), nil, nil, nil)
}

func (c *Client) action(ctx context.Context, id int64, name string, body any) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/appointments/%d/%s", id, name), nil, body, nil)
}

// do отправляет JSON и декодирует JSON-ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, params, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := decodeError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", service.ErrTransport, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body io.Reader) (*http.Request, error) {
	if c.session == nil || c.session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", service.ErrTransport, req.Method, req.URL.Path, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func appointmentFilename(disposition string, appointmentID int64) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return fmt.Sprintf("appointment-%d", appointmentID)
}
