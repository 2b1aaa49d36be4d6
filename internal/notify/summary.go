// Package notify renders completion summaries and dispatches them to the
// configured outbound channels.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"vigil/internal/model"
	"vigil/internal/view"
)

// FormatSummary renders the schedule's booked slots into the outbound text:
// a header naming the date span, one line per booked slot ascending, and a
// closing thanks line. Returns "" when nothing is booked; callers must not
// dispatch in that case.
func FormatSummary(s *model.Schedule) string {
	booked := view.BookedSlots(s)
	if len(booked) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Escala da Torre de Oração: %s*\n\n", s.SpanLabel())
	for _, slot := range booked {
		fmt.Fprintf(&b, "*%s*: %s\n", slot.Label(), slot.BookedBy())
	}
	b.WriteString("\nObrigado a todos pela participação!")
	return b.String()
}

// ComposerLink builds the pre-filled message-compose URL for the
// destination number. Fire-and-forget: following the link is up to whoever
// receives it.
func ComposerLink(number, text string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(text))
}
