package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.Querier) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

const userColumns = `id, telegram_id, username, first_name, last_name, code, role, auto_office_hours, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Code,
		&user.Role,
		&user.AutoOfficeHours,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, code, role, auto_office_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Code,
		user.Role,
		user.AutoOfficeHours,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.DB().QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// Update обновляет данные профиля из Telegram
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, user.Username, user.FirstName, user.LastName, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateRole назначает роль и код (номер студенческого или табельный)
func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role model.Role, code string) error {
	query := `UPDATE users SET role = $1, code = $2 WHERE id = $3`

	affected, err := r.ExecAffected(ctx, query, role, code, userID)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// SetAutoOfficeHours включает или выключает автоматическую генерацию приёмных часов
func (r *UserRepository) SetAutoOfficeHours(ctx context.Context, userID int64, enabled bool) error {
	query := `UPDATE users SET auto_office_hours = $1 WHERE id = $2 AND role = 'lecturer'`

	affected, err := r.ExecAffected(ctx, query, enabled, userID)
	if err != nil {
		return fmt.Errorf("set auto office hours: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("lecturer not found")
	}

	return nil
}

// ListLecturers все преподаватели по алфавиту
func (r *UserRepository) ListLecturers(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'lecturer' ORDER BY first_name, last_name`
	return r.list(ctx, query)
}

// ListWithAutoOfficeHours преподаватели, для которых планировщик создаёт приёмные часы
func (r *UserRepository) ListWithAutoOfficeHours(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'lecturer' AND auto_office_hours ORDER BY id`
	return r.list(ctx, query)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*model.User, error) {
	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
