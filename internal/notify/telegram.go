package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sender часть API бота, которая нужна уведомлениям
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

const sendTimeout = 10 * time.Second

// TelegramNotifier отправляет уведомления о заявках в Telegram.
// Отправка идёт в фоне и не задерживает ответ; ошибки только логируются.
type TelegramNotifier struct {
	bot         sender
	adminChatID int64
	timeout     time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// NewTelegramNotifier отправляет уведомления через уже созданного бота
func NewTelegramNotifier(b *bot.Bot, adminChatID int64, logger *zap.Logger) *TelegramNotifier {
	return newTelegramNotifier(b, adminChatID, logger)
}

func newTelegramNotifier(s sender, adminChatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:         s,
		adminChatID: adminChatID,
		timeout:     sendTimeout,
		logger:      logger,
	}
}

// RequestCreated сообщает администраторам о новой заявке
func (n *TelegramNotifier) RequestCreated(ctx context.Context, req *model.RoomRequest, student *model.Student, room *model.Room) {
	if n.adminChatID == 0 {
		return
	}

	text := fmt.Sprintf("🛏 Новая заявка #%d\n\nСтудент: %s (%s)\nКомната: %s, блок %s, этаж %s\nКровать: %d",
		req.ID,
		student.FullName(),
		student.MatricNumber,
		room.RoomNumber,
		room.RoomBlock,
		room.RoomFloor,
		req.Bed,
	)

	n.send(ctx, n.adminChatID, text)
}

// RequestResolved сообщает студенту о решении по заявке
func (n *TelegramNotifier) RequestResolved(ctx context.Context, req *model.RoomRequest, student *model.Student, room *model.Room) {
	if student == nil || student.TelegramChatID == nil {
		return
	}

	var text string
	switch req.Status {
	case model.RoomRequestStatusApproved:
		text = fmt.Sprintf("✅ Заявка #%d одобрена\n\nКомната: %s, кровать %d", req.ID, room.RoomNumber, req.Bed)
	case model.RoomRequestStatusDeclined:
		text = fmt.Sprintf("❌ Заявка #%d отклонена\n\nКомната: %s, кровать %d", req.ID, room.RoomNumber, req.Bed)
	default:
		return
	}

	n.send(ctx, *student.TelegramChatID, text)
}

// send отправляет сообщение в фоне. Контекст запроса отвязывается от отмены:
// уведомление уходит и после того, как клиент получил ответ.
func (n *TelegramNotifier) send(ctx context.Context, chatID int64, text string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()

		_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		if err != nil {
			n.logger.Error("Failed to send telegram notification",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}()
}

// Wait ждёт отправки уже поставленных уведомлений
func (n *TelegramNotifier) Wait() {
	n.wg.Wait()
}

// Nop ничего не отправляет
type Nop struct{}

func (Nop) RequestCreated(context.Context, *model.RoomRequest, *model.Student, *model.Room)  {}
func (Nop) RequestResolved(context.Context, *model.RoomRequest, *model.Student, *model.Room) {}
