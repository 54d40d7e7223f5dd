package backend

import (
	"context"
	"os"
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/app"
	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDate = "2025-03-10"

// fixture backend на чистой базе TEST_DB_DSN со студентом, преподавателем и админом
type fixture struct {
	b        *Backend
	pool     *pgxpool.Pool
	student  context.Context
	lecturer context.Context
	admin    context.Context
	lecID    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `TRUNCATE attachments, appointments, availability_slots, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	users := repository.NewUserRepository(pool)
	newUser := func(telegramID int64, role model.Role) context.Context {
		u := &model.User{TelegramID: telegramID, FirstName: string(role), Role: role}
		require.NoError(t, users.Create(ctx, u))
		return auth.WithActor(ctx, auth.Actor{UserID: u.ID, Role: role})
	}

	f := &fixture{b: New(pool, zap.NewNop()), pool: pool}
	f.student = newUser(100, model.RoleStudent)
	f.lecturer = newUser(200, model.RoleLecturer)
	f.admin = newUser(300, model.RoleAdmin)

	actor, err := auth.ActorFrom(f.lecturer)
	require.NoError(t, err)
	f.lecID = actor.UserID
	return f
}

func (f *fixture) slot(t *testing.T, start, end string) *model.AvailabilitySlot {
	t.Helper()
	slot, err := f.b.CreateSlot(f.lecturer, model.SlotRequest{
		Date:      testDate,
		StartTime: model.MustClock(start),
		EndTime:   model.MustClock(end),
	})
	require.NoError(t, err)
	return slot
}

func (f *fixture) book(t *testing.T, lecturerID *int64, start string) *model.Appointment {
	t.Helper()
	a, err := f.b.CreateAppointment(f.student, model.AppointmentRequest{
		LecturerID:       lecturerID,
		Date:             testDate,
		Time:             model.MustClock(start),
		Duration:         30,
		Reason:           "thesis",
		ConsultationType: model.ConsultationInPerson,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) booked(t *testing.T, slotID int64) bool {
	t.Helper()
	slot, err := repository.NewSlotRepository(f.pool).GetByID(context.Background(), slotID)
	require.NoError(t, err)
	require.NotNil(t, slot)
	return slot.Booked
}

func (f *fixture) approve(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, f.b.Approve(f.lecturer, id, "room 101"))
}

func TestCreateAppointmentBooksContainingSlot(t *testing.T) {
	f := newFixture(t)
	slot := f.slot(t, "09:00", "11:00")

	a := f.book(t, &f.lecID, "09:30")

	require.NotNil(t, a.SlotID)
	assert.Equal(t, slot.ID, *a.SlotID)
	assert.True(t, f.booked(t, slot.ID))

	free, err := f.b.slots.ListFreeOnDate(context.Background(), f.lecID, testDate)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestTerminalTransitionsFreeSlot(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, f *fixture, id int64)
	}{
		{"reject", func(t *testing.T, f *fixture, id int64) {
			require.NoError(t, f.b.Reject(f.lecturer, id))
		}},
		{"student cancel pending", func(t *testing.T, f *fixture, id int64) {
			require.NoError(t, f.b.StudentCancel(f.student, id, "changed plans"))
		}},
		{"lecturer cancel", func(t *testing.T, f *fixture, id int64) {
			f.approve(t, id)
			require.NoError(t, f.b.LecturerCancel(f.lecturer, id))
		}},
		{"approve cancel request", func(t *testing.T, f *fixture, id int64) {
			f.approve(t, id)
			require.NoError(t, f.b.StudentCancel(f.student, id, "sick"))
			require.NoError(t, f.b.ApproveCancelRequest(f.lecturer, id))
		}},
		{"complete", func(t *testing.T, f *fixture, id int64) {
			f.approve(t, id)
			require.NoError(t, f.b.RecordResult(f.lecturer, id, model.ResultSolved, ""))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			slot := f.slot(t, "09:00", "11:00")
			a := f.book(t, &f.lecID, "10:00")
			require.True(t, f.booked(t, slot.ID))

			tt.run(t, f, a.ID)

			assert.False(t, f.booked(t, slot.ID))
		})
	}
}

func TestNonTerminalTransitionsKeepSlot(t *testing.T) {
	f := newFixture(t)
	slot := f.slot(t, "09:00", "11:00")
	a := f.book(t, &f.lecID, "10:00")

	f.approve(t, a.ID)
	require.NoError(t, f.b.StudentCancel(f.student, a.ID, "sick"))
	require.NoError(t, f.b.RejectCancelRequest(f.lecturer, a.ID))

	assert.True(t, f.booked(t, slot.ID))
}

func TestApproveQueuedAssignsLecturerAndSlot(t *testing.T) {
	f := newFixture(t)
	slot := f.slot(t, "13:30", "15:00")

	a := f.book(t, nil, "14:00")
	require.Nil(t, a.LecturerID)
	require.Nil(t, a.SlotID)
	require.False(t, f.booked(t, slot.ID))

	f.approve(t, a.ID)

	got, err := f.b.appointments.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LecturerID)
	assert.Equal(t, f.lecID, *got.LecturerID)
	require.NotNil(t, got.SlotID)
	assert.Equal(t, slot.ID, *got.SlotID)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.True(t, f.booked(t, slot.ID))
}

func TestAdminDeleteFreesSlot(t *testing.T) {
	f := newFixture(t)
	slot := f.slot(t, "09:00", "11:00")
	a := f.book(t, &f.lecID, "09:00")

	err := f.b.AdminDelete(f.lecturer, a.ID)
	require.ErrorIs(t, err, service.ErrForbidden)
	assert.True(t, f.booked(t, slot.ID))

	require.NoError(t, f.b.AdminDelete(f.admin, a.ID))
	assert.False(t, f.booked(t, slot.ID))

	got, err := f.b.appointments.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteSlotRefusesBookedSlot(t *testing.T) {
	f := newFixture(t)
	slot := f.slot(t, "09:00", "11:00")
	a := f.book(t, &f.lecID, "09:00")

	err := f.b.DeleteSlot(f.lecturer, slot.ID)
	require.ErrorIs(t, err, service.ErrSlotBooked)
	assert.Equal(t, service.CategoryRemote, service.Classify(err))

	require.NoError(t, f.b.Reject(f.lecturer, a.ID))
	require.NoError(t, f.b.DeleteSlot(f.lecturer, slot.ID))
}

func TestFreeStartTimesSkipBookedSlots(t *testing.T) {
	f := newFixture(t)
	f.slot(t, "09:00", "10:00")
	f.slot(t, "13:30", "14:30")
	f.book(t, &f.lecID, "09:00")

	times, err := f.b.FreeStartTimes(f.student, schedule.StartTimeQuery{LecturerID: &f.lecID, Date: testDate, Duration: 30})
	require.NoError(t, err)
	require.NotEmpty(t, times)
	for _, c := range times {
		assert.GreaterOrEqual(t, c, model.MustClock("13:30"))
	}
}
