package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	token, err := auth.Sign([]byte("secret"), auth.Actor{UserID: 7, Role: model.RoleLecturer}, time.Hour)
	require.NoError(t, err)
	session, err := NewSession(token)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, session, srv.Client())
}

func TestSessionReadsActor(t *testing.T) {
	token, err := auth.Sign([]byte("secret"), auth.Actor{UserID: 7, Role: model.RoleStudent}, time.Hour)
	require.NoError(t, err)

	session, err := NewSession(token)

	require.NoError(t, err)
	assert.Equal(t, auth.Actor{UserID: 7, Role: model.RoleStudent}, session.Actor())
	assert.False(t, session.Expired(time.Now()))
	assert.True(t, session.Expired(time.Now().Add(2*time.Hour)))
}

func TestCreateSlotSendsBearerAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/slots", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req model.SlotRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.MustClock("09:00"), req.StartTime)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":42,"lecturer_id":7,"date":"2025-03-10","start_time":"09:00","end_time":"10:00","booked":false}`)
	})

	slot, err := client.CreateSlot(context.Background(), model.SlotRequest{
		Date: "2025-03-10", StartTime: model.MustClock("09:00"), EndTime: model.MustClock("10:00"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), slot.ID)
	assert.Equal(t, model.MustClock("10:00"), slot.EndTime)
}

func TestRejectionKeepsCause(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"appointment 5 is APPROVED","code":"illegal_transition"}`)
	})

	err := client.Reject(context.Background(), 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrRejected)
	assert.ErrorIs(t, err, lifecycle.ErrIllegalTransition)
	assert.Equal(t, service.CategoryRemote, service.Classify(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestServerErrorIsTransport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListAppointments(context.Background())

	assert.Equal(t, service.CategoryTransport, service.Classify(err))
}

func TestUnreachableServerIsTransport(t *testing.T) {
	token, err := auth.Sign([]byte("secret"), auth.Actor{UserID: 7, Role: model.RoleLecturer}, time.Hour)
	require.NoError(t, err)
	session, err := NewSession(token)
	require.NoError(t, err)

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, session, nil)

	_, err = client.ListSlots(context.Background(), model.SlotQuery{})

	assert.ErrorIs(t, err, service.ErrTransport)
}

func TestFreeStartTimesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/slots/free-start-times", r.URL.Path)
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("date"))
		assert.Equal(t, "30", r.URL.Query().Get("duration"))
		assert.Equal(t, "3", r.URL.Query().Get("lecturer_id"))
		_, _ = io.WriteString(w, `["09:00","09:15"]`)
	})

	lecturerID := int64(3)
	times, err := client.FreeStartTimes(context.Background(), schedule.StartTimeQuery{
		LecturerID: &lecturerID, Date: "2025-03-10", Duration: 30,
	})

	require.NoError(t, err)
	assert.Equal(t, []model.Clock{model.MustClock("09:00"), model.MustClock("09:15")}, times)
}

func TestAttachmentRoundTrip(t *testing.T) {
	var uploaded []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "notes.pdf", header.Filename)
			uploaded, _ = io.ReadAll(file)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="notes.pdf"`)
			_, _ = w.Write(uploaded)
		}
	})

	err := client.UploadAttachment(context.Background(), &model.Attachment{
		AppointmentID: 5, Filename: "notes.pdf", Data: []byte("%PDF"),
	})
	require.NoError(t, err)

	att, err := client.DownloadAttachment(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", att.Filename)
	assert.Equal(t, []byte("%PDF"), att.Data)
}

func TestExpiredSessionRefusesLocally(t *testing.T) {
	client := New("http://127.0.0.1:1", &Session{Token: "x", exp: time.Now().Add(-time.Minute)}, nil)

	err := client.DeleteSlot(context.Background(), 1)

	assert.ErrorIs(t, err, ErrSessionExpired)
}
