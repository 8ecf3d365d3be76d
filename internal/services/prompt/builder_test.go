package prompt

import (
	"strings"
	"testing"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

func TestSystemIncludesPersonaAndDirective(t *testing.T) {
	brand := model.BrandProfile{
		OwnerName: "Salman Dev",
		Persona:   "You are the assistant for Salman Dev, a developer from Bangladesh.",
	}

	sys := System(brand, enums.LanguageBangla)
	if !strings.Contains(sys, brand.Persona) {
		t.Fatalf("system prompt should embed the persona")
	}
	if !strings.Contains(sys, "Romanized Bangla") {
		t.Fatalf("system prompt should carry the bangla directive")
	}
	if !strings.Contains(sys, "1-3 sentences") {
		t.Fatalf("system prompt should carry the length constraint")
	}
}

func TestSystemEmbedsFAQs(t *testing.T) {
	brand := model.BrandProfile{
		OwnerName: "Salman Dev",
		FAQs: []model.FAQ{
			{Question: "How much is the website bot?", Answer: "It starts at $50."},
			{Question: "Do you take custom orders?", Answer: "Yes, message Salman directly."},
		},
	}

	sys := System(brand, enums.LanguageEnglish)
	if !strings.Contains(sys, "Q: How much is the website bot?") || !strings.Contains(sys, "A: It starts at $50.") {
		t.Fatalf("system prompt should embed FAQ pairs: %q", sys)
	}
	if !strings.Contains(sys, "Q: Do you take custom orders?") {
		t.Fatalf("every FAQ pair should be present")
	}

	// No FAQ block at all when none are configured.
	bare := System(model.BrandProfile{OwnerName: "Salman Dev"}, enums.LanguageEnglish)
	if strings.Contains(bare, "Common questions") {
		t.Fatalf("empty FAQ list should add nothing")
	}
}

func TestSystemDefaultsToEnglishForUnsetLanguage(t *testing.T) {
	sys := System(model.BrandProfile{OwnerName: "Salman Dev"}, enums.LanguageUnset)
	if !strings.Contains(sys, "You will respond in English.") {
		t.Fatalf("unset language should default to English directive")
	}
}

func TestUserPromptFallbacks(t *testing.T) {
	got := User("", "", "how much is the bot?")
	if !strings.Contains(got, "First interaction") {
		t.Fatalf("empty context should read as first interaction")
	}
	if !strings.Contains(got, "No catalog available.") {
		t.Fatalf("empty catalog should be stated explicitly")
	}
	if !strings.Contains(got, "how much is the bot?") {
		t.Fatalf("user message must be present")
	}

	got = User("1. Website bot — $50", "asked about demos", "ok")
	if !strings.Contains(got, "Website bot") || !strings.Contains(got, "asked about demos") {
		t.Fatalf("catalog and context should be embedded: %q", got)
	}
}
