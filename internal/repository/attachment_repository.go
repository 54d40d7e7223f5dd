package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository/base"
)

type AttachmentRepository struct {
	*base.Repository
}

func NewAttachmentRepository(db base.Querier) *AttachmentRepository {
	return &AttachmentRepository{Repository: base.NewRepository(db)}
}

// Create сохраняет файл записи
func (r *AttachmentRepository) Create(ctx context.Context, att *model.Attachment) error {
	query := `
		INSERT INTO attachments (appointment_id, filename, content_type, data)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.DB().Exec(ctx, query, att.AppointmentID, att.Filename, att.ContentType, att.Data)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}

	return nil
}

// GetLatest последний приложенный к записи файл
func (r *AttachmentRepository) GetLatest(ctx context.Context, appointmentID int64) (*model.Attachment, error) {
	query := `
		SELECT appointment_id, filename, content_type, data
		FROM attachments
		WHERE appointment_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	var att model.Attachment
	err := r.DB().QueryRow(ctx, query, appointmentID).Scan(
		&att.AppointmentID,
		&att.Filename,
		&att.ContentType,
		&att.Data,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}

	return &att, nil
}
