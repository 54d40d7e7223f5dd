package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"go.uber.org/zap"
)

// Handlers обработчики команд, диалогов и inline-кнопок бота
type Handlers struct {
	userService      *service.UserService
	collab           service.Collaborator
	stateManager     *state.Manager
	location         *time.Location
	batchConcurrency int
	httpClient       *http.Client
	now              func() time.Time
	logger           *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*session // telegramID -> session
}

func NewHandlers(
	userService *service.UserService,
	collab service.Collaborator,
	stateManager *state.Manager,
	location *time.Location,
	batchConcurrency int,
	logger *zap.Logger,
) *Handlers {
	if location == nil {
		location = time.Local
	}
	return &Handlers{
		userService:      userService,
		collab:           collab,
		stateManager:     stateManager,
		location:         location,
		batchConcurrency: batchConcurrency,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		now:              time.Now,
		logger:           logger,
		sessions:         make(map[int64]*session),
	}
}
