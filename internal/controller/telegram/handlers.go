package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/hostel_rooms/internal/allocation"
	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const errorText = "❌ Произошла ошибка. Попробуйте позже."

// Handlers команды бота. Бот только читает данные, изменения идут через HTTP API.
type Handlers struct {
	rooms    *service.RoomService
	requests *service.RequestService
	queries  *service.QueryService
	students *service.StudentService
	logger   *zap.Logger
}

func NewHandlers(
	rooms *service.RoomService,
	requests *service.RequestService,
	queries *service.QueryService,
	students *service.StudentService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		rooms:    rooms,
		requests: requests,
		queries:  queries,
		students: students,
		logger:   logger,
	}
}

// reply обёртка: текст ответа строится отдельно от отправки
func (h *Handlers) reply(build func(ctx context.Context, chatID int64) string) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}

		chatID := update.Message.Chat.ID
		text := build(ctx, chatID)

		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		if err != nil {
			h.logger.Error("Failed to send message",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}
}

func (h *Handlers) startText(ctx context.Context, chatID int64) string {
	greeting := "👋 Привет!"
	if student, err := h.students.GetByTelegramChatID(ctx, chatID); err == nil {
		greeting = fmt.Sprintf("👋 Привет, %s!", student.FirstName)
	}

	return greeting + "\n\n" +
		"Это бот общежития: здесь можно посмотреть свободные кровати и статус своих заявок.\n\n" +
		helpCommands +
		fmt.Sprintf("\n\nID этого чата: %d. Передайте его администратору, чтобы получать уведомления.", chatID)
}

const helpCommands = "Доступные команды:\n" +
	"/stats - Статистика по кроватям\n" +
	"/rooms - Комнаты со свободными кроватями\n" +
	"/myroom - Моя кровать\n" +
	"/myrequests - Мои заявки\n" +
	"/help - Справка"

func (h *Handlers) helpText(context.Context, int64) string {
	return "📚 Справка по командам:\n\n" + helpCommands + "\n\n" +
		"Заявку на кровать можно подать через приложение общежития."
}

func (h *Handlers) statsText(ctx context.Context, _ int64) string {
	stats, err := h.queries.Stats(ctx)
	if err != nil {
		h.logger.Error("Failed to get hostel stats", zap.Error(err))
		return errorText
	}

	return fmt.Sprintf(
		"📊 Общежития: %d\n🛏 Свободно кроватей: %d\n👤 Занято кроватей: %d",
		stats.Hostels, stats.AvailableBeds, stats.OccupiedBeds,
	)
}

func (h *Handlers) roomsText(ctx context.Context, _ int64) string {
	rooms, err := h.rooms.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list rooms", zap.Error(err))
		return errorText
	}

	var sb strings.Builder
	for _, room := range rooms {
		if !room.IsAvailable() {
			continue
		}
		vacant := room.Capacity - allocation.Occupancy(room)
		if vacant == 0 {
			continue
		}
		hostel := ""
		if room.Hostel != nil {
			hostel = room.Hostel.Name + ", "
		}
		fmt.Fprintf(&sb, "🚪 %sблок %s, этаж %s, комната %s: свободно %d из %d\n",
			hostel, room.RoomBlock, room.RoomFloor, room.RoomNumber, vacant, room.Capacity)
	}

	if sb.Len() == 0 {
		return "😔 Свободных кроватей нет."
	}
	return "🛏 Свободные кровати:\n\n" + sb.String()
}

// linkedStudent студент, привязанный к чату; текст ошибки, если его нет
func (h *Handlers) linkedStudent(ctx context.Context, chatID int64) (*model.Student, string) {
	student, err := h.students.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, apperr.ErrStudentNotFound) {
			return nil, "❌ Этот чат не привязан к студенту. Используйте /start, чтобы узнать ID чата."
		}
		h.logger.Error("Failed to get student by chat", zap.Int64("chat_id", chatID), zap.Error(err))
		return nil, errorText
	}
	return student, ""
}

func (h *Handlers) myRoomText(ctx context.Context, chatID int64) string {
	student, failure := h.linkedStudent(ctx, chatID)
	if student == nil {
		return failure
	}

	a, err := h.queries.FindAllocation(ctx, student.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotAssigned) {
			return "🏠 Вы пока не заселены."
		}
		h.logger.Error("Failed to find allocation", zap.Int64("student_id", student.ID), zap.Error(err))
		return errorText
	}

	hostel := "-"
	if a.Hostel != nil {
		hostel = a.Hostel.Name
	}
	return fmt.Sprintf(
		"🏠 %s\nБлок %s, этаж %s\nКомната %s, кровать %d",
		hostel, a.Block, a.Floor, a.Room, a.BedIndex,
	)
}

func (h *Handlers) myRequestsText(ctx context.Context, chatID int64) string {
	student, failure := h.linkedStudent(ctx, chatID)
	if student == nil {
		return failure
	}

	requests, err := h.requests.ListByStudent(ctx, student.ID)
	if err != nil {
		h.logger.Error("Failed to list student requests", zap.Int64("student_id", student.ID), zap.Error(err))
		return errorText
	}
	if len(requests) == 0 {
		return "📭 У вас нет заявок."
	}

	var sb strings.Builder
	sb.WriteString("📋 Ваши заявки:\n\n")
	for _, req := range requests {
		fmt.Fprintf(&sb, "%s #%d: комната %d, кровать %d (%s)\n",
			statusEmoji(req.Status), req.ID, req.RoomID, req.Bed, req.CreatedAt.Format("02.01.2006 15:04"))
	}
	return sb.String()
}

func statusEmoji(status model.RoomRequestStatus) string {
	switch status {
	case model.RoomRequestStatusApproved:
		return "✅"
	case model.RoomRequestStatusDeclined:
		return "❌"
	default:
		return "⏳"
	}
}
