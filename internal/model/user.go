package model

import "time"

type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              int64     `json:"id"`
	TelegramID      int64     `json:"telegram_id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Code            string    `json:"code"` // номер студенческого / табельный номер
	Role            Role      `json:"role"`
	AutoOfficeHours bool      `json:"auto_office_hours"` // генерировать приёмные часы автоматически
	CreatedAt       time.Time `json:"created_at"`
}

// FullName имя для отображения
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
