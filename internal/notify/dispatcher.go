package notify

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"vigil/internal/model"
)

// MinNumberLength is the shortest destination number accepted for dispatch
// configuration.
const MinNumberLength = 4

// ValidateNumber checks a destination number before it is saved.
func ValidateNumber(number string) error {
	if len(number) < MinNumberLength {
		return fmt.Errorf("%w: need at least %d digits", model.ErrInvalidNumber, MinNumberLength)
	}
	return nil
}

// TelegramSender is the subset of the bot API the dispatcher uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier relays summary texts to an admin chat.
type TelegramNotifier struct {
	bot     TelegramSender
	chatID  int64
	limiter *rate.Limiter
}

// NewTelegramNotifier creates a notifier for the admin chat. Sends are rate
// limited to stay inside the bot API budget.
func NewTelegramNotifier(bot TelegramSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// Send delivers one message to the admin chat.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Dispatcher fans a completion summary out to the configured channels: it
// always records the WhatsApp composer link, and forwards the summary to the
// admin Telegram chat when one is configured.
type Dispatcher struct {
	telegram *TelegramNotifier
	logger   zerolog.Logger

	// lastLink keeps the most recent composer link so the API can hand it
	// back to admins. Guarded by mu; dispatches and reads arrive from
	// different handler goroutines.
	mu       sync.Mutex
	lastLink string
}

// NewDispatcher creates a dispatcher. telegram may be nil.
func NewDispatcher(telegram *TelegramNotifier, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		telegram: telegram,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// SendSummary dispatches the summary text for the destination number.
func (d *Dispatcher) SendSummary(ctx context.Context, number, text string) error {
	link := ComposerLink(number, text)
	d.mu.Lock()
	d.lastLink = link
	d.mu.Unlock()
	d.logger.Info().
		Str("destination", number).
		Int("length", len(text)).
		Msg("summary ready for dispatch")

	if d.telegram == nil {
		return nil
	}
	return d.telegram.Send(ctx, text+"\n\n"+link)
}

// LastLink returns the composer link from the most recent dispatch.
func (d *Dispatcher) LastLink() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastLink
}
