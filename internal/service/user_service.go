package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"go.uber.org/zap"
)

// UserStore хранилище пользователей (repository.UserRepository)
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, userID int64, role model.Role, code string) error
	SetAutoOfficeHours(ctx context.Context, userID int64, enabled bool) error
	ListLecturers(ctx context.Context) ([]*model.User, error)
}

type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя. Новые пользователи - студенты.
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error) {
	existing, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	if existing != nil {
		existing.Username = username
		existing.FirstName = firstName
		existing.LastName = lastName

		if err := s.users.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return existing, nil
	}

	user := &model.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       model.RoleStudent,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Lecturers список для выбора преподавателя при записи
func (s *UserService) Lecturers(ctx context.Context) ([]*model.User, error) {
	return s.users.ListLecturers(ctx)
}

// SetCode сохраняет номер студенческого или табельный номер, роль не меняется
func (s *UserService) SetCode(ctx context.Context, telegramID int64, code string) (*model.User, error) {
	user, err := s.require(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("empty code: %w", ErrInvalidInput)
	}

	if err := s.users.UpdateRole(ctx, user.ID, user.Role, code); err != nil {
		return nil, fmt.Errorf("update code: %w", err)
	}
	user.Code = code
	return user, nil
}

// BecomeLecturer переводит студента в преподаватели, табельный номер обязателен
func (s *UserService) BecomeLecturer(ctx context.Context, telegramID int64, code string) (*model.User, error) {
	user, err := s.require(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleLecturer {
		return user, nil
	}
	if user.Role != model.RoleStudent {
		return nil, fmt.Errorf("role %s cannot become lecturer: %w", user.Role, ErrForbidden)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("employee number required: %w", ErrInvalidInput)
	}

	if err := s.users.UpdateRole(ctx, user.ID, model.RoleLecturer, code); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = model.RoleLecturer
	user.Code = code

	s.logger.Info("User became lecturer",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}

// SetRole назначение роли оператором (staff, admin)
func (s *UserService) SetRole(ctx context.Context, telegramID int64, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}

	user, err := s.require(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, user.ID, role, user.Code); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logger.Info("User role changed",
		zap.Int64("user_id", user.ID),
		zap.String("from", string(user.Role)),
		zap.String("to", string(role)),
	)

	user.Role = role
	return user, nil
}

// ToggleAutoOfficeHours переключает автоматические приёмные часы, возвращает новое значение
func (s *UserService) ToggleAutoOfficeHours(ctx context.Context, telegramID int64) (bool, error) {
	user, err := s.require(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if user.Role != model.RoleLecturer {
		return false, fmt.Errorf("office hours for %s: %w", user.Role, ErrForbidden)
	}

	enabled := !user.AutoOfficeHours
	if err := s.users.SetAutoOfficeHours(ctx, user.ID, enabled); err != nil {
		return false, fmt.Errorf("set auto office hours: %w", err)
	}

	s.logger.Info("Auto office hours toggled",
		zap.Int64("user_id", user.ID),
		zap.Bool("enabled", enabled),
	)

	return enabled, nil
}

func (s *UserService) require(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("telegram id %d: %w", telegramID, ErrNotFound)
	}
	return user, nil
}
