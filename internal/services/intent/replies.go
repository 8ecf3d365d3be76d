package intent

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs!",
	"Why did the developer go broke? Because he used up all his cache!",
	"How many programmers does it take to change a light bulb? None, that's a hardware problem.",
	"Why do Java developers wear glasses? Because they can't C#!",
	"A SQL query walks into a bar, walks up to two tables and asks: 'Can I join you?'",
	"Why was the function sad after a party? It didn't get called.",
	"There are 10 types of people in the world: those who understand binary and those who don't.",
}

var quotes = []string{
	"The best way to predict the future is to invent it. — Alan Kay",
	"Code is like humor. When you have to explain it, it's bad. — Cory House",
	"First, solve the problem. Then, write the code. — John Johnson",
	"Simplicity is the soul of efficiency. — Austin Freeman",
	"Make it work, make it right, make it fast. — Kent Beck",
	"The only way to do great work is to love what you do. — Steve Jobs",
	"Talk is cheap. Show me the code. — Linus Torvalds",
}

// RandomJoke picks a joke; the fixed intent avoids a model call entirely.
func RandomJoke() string {
	return "😂 " + jokes[rand.Intn(len(jokes))]
}

// QuoteOfTheDay is stable within a calendar day.
func QuoteOfTheDay(now time.Time) string {
	dayOfYear := now.YearDay()
	return fmt.Sprintf("💡 Quote of the Day:\n\n\"%s\"", quotes[dayOfYear%len(quotes)])
}

// MusicReply acknowledges a detected music request with the command relayed
// to the music bot.
func MusicReply(song string) string {
	return fmt.Sprintf("🎵 Music request detected!\n\nNow playing: %s\n\nCommand sent to music bot:\n/play %s", song, song)
}

// WeatherReply is the templated acknowledgement; the actual forecast
// fetcher lives outside this gateway.
func WeatherReply(city string) string {
	return fmt.Sprintf("🌤️ Looking up the weather in %s — one moment!", city)
}

// ImageReply acknowledges an image-generation trigger the same way.
func ImageReply(prompt string) string {
	return fmt.Sprintf("🖼️ Generating: %s — this can take a little while.", prompt)
}

// ContactCard renders the brand's contact block from the injected profile.
func ContactCard(brand model.BrandProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📞 Connect with %s:\n", brand.OwnerName)

	if brand.Links.Telegram != "" {
		fmt.Fprintf(&b, "\n💬 Telegram: %s", brand.Links.Telegram)
	}
	if brand.Links.GitHub != "" {
		fmt.Fprintf(&b, "\n🐙 GitHub: %s", brand.Links.GitHub)
	}
	if brand.Links.WhatsApp != "" {
		fmt.Fprintf(&b, "\n💬 WhatsApp: %s", brand.Links.WhatsApp)
	}
	if brand.Links.Email != "" {
		fmt.Fprintf(&b, "\n📧 Email: %s", brand.Links.Email)
	}
	if brand.Links.Portfolio != "" {
		fmt.Fprintf(&b, "\n🌐 Portfolio: %s", brand.Links.Portfolio)
	}
	if brand.ContactLine != "" {
		fmt.Fprintf(&b, "\n\n%s", brand.ContactLine)
	}

	return b.String()
}
