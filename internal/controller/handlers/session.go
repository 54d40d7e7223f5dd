package handlers

import (
	"context"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/service"
)

// session клиентское состояние движка для одного пользователя бота.
// Живёт между сообщениями пользователя.
type session struct {
	actor        auth.Actor
	slots        *service.SlotService
	appointments *service.AppointmentService
}

// sessionFor возвращает контекст с пользователем и его сессию; смена роли пересоздаёт сессию
func (h *Handlers) sessionFor(ctx context.Context, user *model.User) (context.Context, *session) {
	actor := auth.Actor{UserID: user.ID, Role: user.Role}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[user.TelegramID]
	if !ok || s.actor != actor {
		s = &session{
			actor:        actor,
			slots:        service.NewSlotService(h.collab, actor, h.batchConcurrency, h.logger),
			appointments: service.NewAppointmentService(h.collab, actor, h.logger),
		}
		h.sessions[user.TelegramID] = s
	}

	return auth.WithActor(ctx, actor), s
}

func (h *Handlers) dropSession(telegramID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, telegramID)
}
