package notify

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/model"
)

func summarySchedule(t *testing.T) *model.Schedule {
	t.Helper()
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	s := &model.Schedule{
		ID:        "2026-01-15",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		Slots: []model.Slot{
			model.NewSlot(start.Add(6 * time.Hour)),
			model.NewSlot(start.Add(7 * time.Hour)),
			model.NewSlot(start.Add(8 * time.Hour)),
		},
	}
	require.NoError(t, s.Slots[2].Claim("João", "2"))
	require.NoError(t, s.Slots[0].Claim("Maria", "1"))
	return s
}

func TestFormatSummary(t *testing.T) {
	text := FormatSummary(summarySchedule(t))

	assert.True(t, strings.HasPrefix(text, "*Escala da Torre de Oração: 2026-01-15 a 2026-01-16*\n\n"))
	assert.Contains(t, text, "*2026-01-15 06h-07h*: Maria\n")
	assert.Contains(t, text, "*2026-01-15 08h-09h*: João\n")
	assert.True(t, strings.HasSuffix(text, "\nObrigado a todos pela participação!"))

	// Booked lines come out in slot order.
	assert.Less(t, strings.Index(text, "Maria"), strings.Index(text, "João"))
	assert.NotContains(t, text, "07h-08h", "free slots stay out of the summary")
}

func TestFormatSummary_NothingBooked(t *testing.T) {
	s := summarySchedule(t)
	for i := range s.Slots {
		s.Slots[i].Booking = nil
	}
	assert.Equal(t, "", FormatSummary(s))
}

func TestComposerLink(t *testing.T) {
	link := ComposerLink("5511987654321", "Olá, escala completa!")

	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511987654321?text="))
	assert.NotContains(t, link[len("https://"):], " ", "text must be URL encoded")
	assert.Contains(t, link, "text=Ol%C3%A1")
}

func TestValidateNumber(t *testing.T) {
	assert.NoError(t, ValidateNumber("5511987654321"))
	assert.NoError(t, ValidateNumber("1234"))
	assert.ErrorIs(t, ValidateNumber("123"), model.ErrInvalidNumber)
	assert.ErrorIs(t, ValidateNumber(""), model.ErrInvalidNumber)
}

type captureSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (c *captureSender) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.sent = append(c.sent, msg)
	return tgbotapi.Message{}, c.err
}

func TestDispatcher_SendSummary(t *testing.T) {
	logger := zerolog.New(io.Discard)

	t.Run("records the composer link without telegram", func(t *testing.T) {
		d := NewDispatcher(nil, logger)

		require.NoError(t, d.SendSummary(context.Background(), "5511987654321", "escala"))
		assert.Equal(t, ComposerLink("5511987654321", "escala"), d.LastLink())
	})

	t.Run("link survives concurrent sends and reads", func(t *testing.T) {
		d := NewDispatcher(nil, logger)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = d.SendSummary(context.Background(), "5511987654321", "escala")
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = d.LastLink()
			}
		}()
		wg.Wait()

		assert.Equal(t, ComposerLink("5511987654321", "escala"), d.LastLink())
	})

	t.Run("forwards to the admin chat", func(t *testing.T) {
		sender := &captureSender{}
		d := NewDispatcher(NewTelegramNotifier(sender, 42), logger)

		require.NoError(t, d.SendSummary(context.Background(), "5511987654321", "escala"))
		require.Len(t, sender.sent, 1)

		msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Equal(t, int64(42), msg.ChatID)
		assert.Contains(t, msg.Text, "escala")
		assert.Contains(t, msg.Text, d.LastLink())
	})
}
