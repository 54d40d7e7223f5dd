// Package backend авторитетная реализация service.Collaborator поверх PostgreSQL.
// Пользователь берётся из контекста (auth.WithActor), все изменения выполняются в транзакциях.
package backend

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Backend struct {
	pool         *pgxpool.Pool
	users        *repository.UserRepository
	slots        *repository.SlotRepository
	appointments *repository.AppointmentRepository
	attachments  *repository.AttachmentRepository
	logger       *zap.Logger
}

var _ service.Collaborator = (*Backend)(nil)

func New(pool *pgxpool.Pool, logger *zap.Logger) *Backend {
	return &Backend{
		pool:         pool,
		users:        repository.NewUserRepository(pool),
		slots:        repository.NewSlotRepository(pool),
		appointments: repository.NewAppointmentRepository(pool),
		attachments:  repository.NewAttachmentRepository(pool),
		logger:       logger,
	}
}

func actorFrom(ctx context.Context) (auth.Actor, error) {
	actor, err := auth.ActorFrom(ctx)
	if err != nil {
		return auth.Actor{}, service.Reject(fmt.Errorf("%w: %w", service.ErrForbidden, err))
	}
	return actor, nil
}

func requireRole(ctx context.Context, roles ...model.Role) (auth.Actor, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return auth.Actor{}, err
	}
	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}
	return auth.Actor{}, service.Reject(fmt.Errorf("role %s: %w", actor.Role, service.ErrForbidden))
}

// canSee студент видит свои записи, преподаватель - свои и общую очередь
func canSee(actor auth.Actor, a *model.Appointment) bool {
	switch actor.Role {
	case model.RoleStudent:
		return a.StudentID == actor.UserID
	case model.RoleLecturer:
		return a.LecturerID == nil || *a.LecturerID == actor.UserID
	case model.RoleStaff, model.RoleAdmin:
		return true
	}
	return false
}

// notFound превращает (nil, nil) репозитория в отказ
func notFound(what string, id int64) error {
	return service.Reject(fmt.Errorf("%s %d: %w", what, id, service.ErrNotFound))
}
