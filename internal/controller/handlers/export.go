package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/controller/keyboard"
	"github.com/Freeeeeet/consult_portal/internal/export"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/render"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// maxAttachmentSize предел Telegram Bot API на скачивание файла
const maxAttachmentSize = 20 << 20

// HandleWeek текущая неделя картинкой: слоты преподавателя и активные записи
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load appointments", err)
		return
	}

	week := render.Week{
		Start:        h.now().In(h.location),
		Now:          h.now().In(h.location),
		Appointments: sess.appointments.Appointments(),
	}
	if user.Role == model.RoleLecturer {
		if err := sess.slots.Reload(actorCtx); err != nil {
			h.fail(ctx, b, chatID, "load slots", err)
			return
		}
		week.Slots = sess.slots.Slots()
	}

	imageData, err := render.WeekPNG(week)
	if err != nil {
		h.logger.Error("Failed to render week", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось построить картинку недели")
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(imageData)},
		Caption: "🗓 Ваша неделя",
	})
	if err != nil {
		h.logger.Error("Failed to send week image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleICS календарь консультаций пользователя в формате .ics
func (h *Handlers) HandleICS(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load appointments", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, sess.appointments.Appointments(), h.location, h.now()); err != nil {
		h.logger.Error("Failed to export calendar", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось сформировать календарь")
		return
	}

	_, err := b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: "consultations.ics", Data: &buf},
		Caption:  "📅 Импортируйте файл в календарь",
	})
	if err != nil {
		h.logger.Error("Failed to send calendar", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// IsDocument сообщение с файлом
func IsDocument(update *models.Update) bool {
	return update.Message != nil && update.Message.Document != nil
}

// HandleDocument прикрепляет файл к записи, номер записи - в подписи
func (h *Handlers) HandleDocument(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID
	doc := update.Message.Document

	appointmentID, ok := appointmentIDFromCaption(update.Message.Caption)
	if !ok {
		h.sendError(ctx, b, chatID, "📎 Укажите в подписи к файлу номер записи, например 12")
		return
	}
	if doc.FileSize > maxAttachmentSize {
		h.sendError(ctx, b, chatID, "❌ Файл больше 20 МБ")
		return
	}

	data, err := h.downloadFile(ctx, b, doc.FileID)
	if err != nil {
		h.logger.Error("Failed to download telegram file", zap.String("file_id", doc.FileID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось получить файл")
		return
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load appointments", err)
		return
	}

	att := &model.Attachment{
		AppointmentID: appointmentID,
		Filename:      doc.FileName,
		ContentType:   doc.MimeType,
		Data:          data,
	}
	if err := sess.appointments.Attach(actorCtx, att); err != nil {
		h.fail(ctx, b, chatID, "attach file", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("📎 Файл прикреплён к записи #%d", appointmentID))
}

func (h *Handlers) onDownload(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	id, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	att, err := sess.appointments.Download(actorCtx, id)
	if err != nil {
		h.fail(ctx, b, chatID, "download attachment", err)
		return nil
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: att.Filename, Data: bytes.NewReader(att.Data)},
		Caption:  fmt.Sprintf("📎 Запись #%d", id),
	})
	if err != nil {
		h.logger.Error("Failed to send attachment", zap.Int64("appointment_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID, formatting.ErrorMessage(err))
	}
	return nil
}

func (h *Handlers) downloadFile(ctx context.Context, b *bot.Bot, fileID string) ([]byte, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize+1))
}
