package intent

import (
	"strings"
	"testing"
	"time"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

func TestRouteMatchers(t *testing.T) {
	tests := []struct {
		content string
		kind    Kind
		arg     string
	}{
		{"play shape of you", KindMusic, "shape of you"},
		{"Play me something soft", KindMusic, "something soft"},
		{"gaan baja tumi robe nirobe", KindMusic, "tumi robe nirobe"},
		{"weather in dhaka", KindWeather, "dhaka"},
		{"what's the weather in sylhet?", KindWeather, "sylhet"},
		{"dhaka weather", KindWeather, "dhaka"},
		{"generate image: a cat in space", KindImage, "a cat in space"},
		{"generate: sunset over hills", KindImage, "sunset over hills"},
		{"tell me a joke", KindJoke, ""},
		{"need some inspiration today", KindQuote, ""},
		{"how do I contact you", KindContact, ""},
		{"what does the website bot cost", KindNeedsCompletion, ""},
		{"hmm interesting", KindNeedsCompletion, ""},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			got := Route(tt.content)
			if got.Kind != tt.kind {
				t.Fatalf("Route(%q) kind = %s, want %s", tt.content, got.Kind, tt.kind)
			}
			if tt.arg != "" && got.Argument != tt.arg {
				t.Fatalf("Route(%q) argument = %q, want %q", tt.content, got.Argument, tt.arg)
			}
		})
	}
}

func TestRouteFirstMatchWins(t *testing.T) {
	// A message matching both music and joke keywords routes to music,
	// the earlier matcher.
	got := Route("play that funny song")
	if got.Kind != KindMusic {
		t.Fatalf("music matcher should win over joke keywords, got %s", got.Kind)
	}
}

func TestDirected(t *testing.T) {
	keywords := []string{"price", "demo", "salman"}

	tests := []struct {
		content string
		want    bool
	}{
		{"hey salmanbot, are you there", true},   // assistant name
		{"what time is it?", true},               // question mark
		{"how much is the demo", true},           // brand keyword
		{"@someoneelse look at this", false},     // addressed to another user
		{"just chatting about the game", false},  // plain chatter
		{"@salmanbot can you help", true},        // our own mention
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			if got := Directed(tt.content, "salmanbot", keywords); got != tt.want {
				t.Fatalf("Directed(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestQuoteOfTheDayIsStableWithinADay(t *testing.T) {
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)
	if QuoteOfTheDay(day) != QuoteOfTheDay(later) {
		t.Fatalf("quote should not change within one day")
	}
	if QuoteOfTheDay(day) == QuoteOfTheDay(day.AddDate(0, 0, 1)) {
		// Adjacent days can only collide when the quote list wraps; with a
		// 7-entry list consecutive days always differ.
		t.Fatalf("quote should rotate across days")
	}
}

func TestContactCardIncludesConfiguredLinks(t *testing.T) {
	brand := model.BrandProfile{
		OwnerName: "Salman Dev",
		Links: model.SocialLinks{
			Telegram: "https://t.me/salmandev",
			GitHub:   "https://github.com/salman-dev-app",
		},
		ContactLine: "For urgent matters message Salman directly.",
	}

	card := ContactCard(brand)
	for _, needle := range []string{"Salman Dev", "t.me/salmandev", "github.com/salman-dev-app", "urgent matters"} {
		if !strings.Contains(card, needle) {
			t.Fatalf("contact card missing %q:\n%s", needle, card)
		}
	}
	if strings.Contains(card, "WhatsApp") {
		t.Fatalf("unset links should not render")
	}
}
