package service

import (
	"context"
	"errors"
	"testing"

	"nailbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegramSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *mockTelegramSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}

func (m *mockTelegramSender) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

func (m *mockTelegramSender) StopReceivingUpdates() {
	m.Called()
}

func TestTelegramService(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)
	ctx := context.Background()

	t.Run("SendText", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.Text == "hello" && msg.ChatID == 123
		})).Return(tgbotapi.Message{}, nil).Once()

		assert.NoError(t, svc.SendText(ctx, 123, "hello"))
		mockSender.AssertExpectations(t)
	})

	t.Run("SendTextCancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, svc.SendText(cctx, 123, "hello"), context.Canceled)
	})

	t.Run("SendChoiceInline", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			if !ok {
				return false
			}
			kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
			return ok && len(kb.InlineKeyboard) == 1 && *kb.InlineKeyboard[0][0].CallbackData == "send::yes"
		})).Return(tgbotapi.Message{}, nil).Once()

		assert.NoError(t, svc.SendChoice(ctx, 1, "?", confirmOptions()))
		mockSender.AssertExpectations(t)
	})

	t.Run("SendChoiceError", func(t *testing.T) {
		mockSender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("blocked")).Once()
		assert.Error(t, svc.SendChoice(ctx, 1, "?", MainMenu()))
	})

	t.Run("SendHTML", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.ParseMode == models.ParseModeHTML
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendHTML(123, "<b>bold</b>")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("EditMessageRemovesKeyboard", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.EditMessageTextConfig)
			return ok && msg.MessageID == 5 && msg.ReplyMarkup == nil
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.EditMessage(1, 5, "done", nil)
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("AnswerCallback", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			_, ok := c.(tgbotapi.CallbackConfig)
			return ok
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		assert.NoError(t, svc.AnswerCallback("cb123", "ok"))
		mockSender.AssertExpectations(t)
	})
}

func TestBuildKeyboard(t *testing.T) {
	t.Run("ReplyWithContact", func(t *testing.T) {
		markup, ok := BuildKeyboard(contactOptions()).(tgbotapi.ReplyKeyboardMarkup)
		require.True(t, ok)
		require.Len(t, markup.Keyboard, 2)
		assert.True(t, markup.Keyboard[0][0].RequestContact)
		assert.Equal(t, btnCancel, markup.Keyboard[1][0].Text)
		assert.True(t, markup.OneTimeKeyboard)
		assert.True(t, markup.ResizeKeyboard)
	})

	t.Run("MainMenuLayout", func(t *testing.T) {
		markup, ok := BuildKeyboard(MainMenu()).(tgbotapi.ReplyKeyboardMarkup)
		require.True(t, ok)
		require.Len(t, markup.Keyboard, 3)
		assert.Len(t, markup.Keyboard[1], 2)
		assert.False(t, markup.OneTimeKeyboard)
	})

	t.Run("CatalogIsInline", func(t *testing.T) {
		markup, ok := BuildKeyboard(serviceOptions(models.DefaultServices)).(tgbotapi.InlineKeyboardMarkup)
		require.True(t, ok)
		require.Len(t, markup.InlineKeyboard, 12)
		assert.Equal(t, "svc::11", *markup.InlineKeyboard[11][0].CallbackData)
	})
}
