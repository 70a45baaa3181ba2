// Package telegram команды Telegram-бота для студентов
package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *Handlers
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, handlers *Handlers, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.reply(h.startText))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.reply(h.helpText))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, h.reply(h.statsText))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rooms", bot.MatchTypeExact, h.reply(h.roomsText))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myroom", bot.MatchTypeExact, h.reply(h.myRoomText))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myrequests", bot.MatchTypeExact, h.reply(h.myRequestsText))

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "stats", Description: "📊 Статистика по кроватям"},
		{Command: "rooms", Description: "🛏 Свободные кровати"},
		{Command: "myroom", Description: "🏠 Моя кровать"},
		{Command: "myrequests", Description: "📋 Мои заявки"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot")
	c.bot.Start(ctx)
}
