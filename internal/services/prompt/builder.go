package prompt

import (
	"fmt"
	"strings"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

var languageDirectives = map[enums.Language]string{
	enums.LanguageBangla:  `You MUST respond in Romanized Bangla (Bangla words written in English letters). Example: "Kemon achen? Ami apnar ki shahajjo korte pari?"`,
	enums.LanguageHindi:   `You MUST respond in Romanized Hindi (Hindi words written in English letters). Example: "Kaise hain aap? Main aapki kya madad kar sakta hoon?"`,
	enums.LanguageEnglish: "You will respond in English.",
}

// System builds the system prompt: persona and brand instructions, the
// language directive for the actor's selected language, and the length
// constraint. It is constructed once per request and reused unchanged
// across every fallback attempt.
func System(brand model.BrandProfile, lang enums.Language) string {
	directive, ok := languageDirectives[lang.OrDefault()]
	if !ok {
		directive = languageDirectives[enums.LanguageEnglish]
	}

	persona := strings.TrimSpace(brand.Persona)
	if persona == "" {
		persona = fmt.Sprintf("You are a friendly digital assistant for %s.", brand.OwnerName)
	}

	return fmt.Sprintf(`%s

Your role:
- Assist potential clients in a friendly, human-like manner
- Explain services and products clearly and concisely
- NEVER sound robotic or like an AI assistant
- Keep responses SHORT (1-3 sentences maximum)
- Redirect sales confirmations to %s directly

%s%s

Remember: You're representing a real person's brand. Be authentic, helpful, and human.`, persona, brand.OwnerName, faqBlock(brand.FAQs), directive)
}

func faqBlock(faqs []model.FAQ) string {
	if len(faqs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Common questions and the answers to give:\n")
	for _, faq := range faqs {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", faq.Question, faq.Answer)
	}
	b.WriteString("\n")
	return b.String()
}

// User builds the user-side prompt: catalog text (an opaque string from the
// catalog collaborator), the actor's rolling conversation context, and the
// current message.
func User(catalog, userContext, message string) string {
	if strings.TrimSpace(userContext) == "" {
		userContext = "First interaction"
	}
	if strings.TrimSpace(catalog) == "" {
		catalog = "No catalog available."
	}

	return strings.TrimSpace(fmt.Sprintf(`Available Products/Services:
%s

User's previous context: %s

User's message: %s

Respond naturally and helpfully. Keep it brief and human-like.`, catalog, userContext, message))
}
