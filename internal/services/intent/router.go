package intent

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindMusic           Kind = "music"
	KindWeather         Kind = "weather"
	KindImage           Kind = "image"
	KindJoke            Kind = "joke"
	KindQuote           Kind = "quote"
	KindContact         Kind = "contact"
	KindNeedsCompletion Kind = "needs_completion"
)

// Intent is the routed classification of one inbound message. Argument
// carries the extracted payload for parameterized intents (song name,
// city, image prompt).
type Intent struct {
	Kind     Kind
	Argument string
}

var musicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^play\s+song\s+(.+)`),
	regexp.MustCompile(`^play\s+me\s+(.+)`),
	regexp.MustCompile(`^play\s+(.+)`),
	regexp.MustCompile(`^gaan\s+baja\s+(.+)`),
	regexp.MustCompile(`^baja\s+(.+)`),
	regexp.MustCompile(`^music\s+play\s+(.+)`),
	regexp.MustCompile(`^(.+?)\s+song\s+play$`),
	regexp.MustCompile(`^(.+?)\s+gaan\s+chai$`),
}

var weatherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`what'?s\s+the\s+weather\s+(?:in\s+)?(.+)`),
	regexp.MustCompile(`how'?s\s+the\s+weather\s+(?:in\s+)?(.+)`),
	regexp.MustCompile(`weather\s+of\s+(.+)`),
	regexp.MustCompile(`weather\s+(?:in\s+)?(.+)`),
	regexp.MustCompile(`^(.+?)\s+weather$`),
	regexp.MustCompile(`temperature\s+(?:in\s+)?(.+)`),
	regexp.MustCompile(`aabohawa\s+(.+)`),
}

var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`generate\s+image:\s*(.+)`),
	regexp.MustCompile(`create\s+image:\s*(.+)`),
	regexp.MustCompile(`draw:\s*(.+)`),
	regexp.MustCompile(`make\s+an?\s+image\s+of\s+(.+)`),
	regexp.MustCompile(`generate\s+a\s+picture\s+of\s+(.+)`),
	regexp.MustCompile(`^generate:\s*(.+)`),
}

var (
	jokeKeywords    = regexp.MustCompile(`joke|funny|laugh|haha|lol`)
	quoteKeywords   = regexp.MustCompile(`quote|inspiration|motivat|wisdom`)
	contactKeywords = regexp.MustCompile(`contact|portfolio|github|whatsapp|email|reach|connect`)
)

// Route classifies a message without any I/O or model call. Matchers run
// in fixed order and the first match wins; everything unmatched needs a
// completion.
func Route(content string) Intent {
	lower := strings.ToLower(strings.TrimSpace(content))

	if song := matchFirst(musicPatterns, lower); song != "" {
		return Intent{Kind: KindMusic, Argument: song}
	}
	if city := matchFirst(weatherPatterns, lower); city != "" {
		city = strings.TrimSpace(strings.ReplaceAll(city, "?", ""))
		if len(city) > 1 && len(city) < 50 {
			return Intent{Kind: KindWeather, Argument: city}
		}
	}
	if prompt := matchFirst(imagePatterns, lower); prompt != "" {
		return Intent{Kind: KindImage, Argument: prompt}
	}
	if jokeKeywords.MatchString(lower) {
		return Intent{Kind: KindJoke}
	}
	if quoteKeywords.MatchString(lower) {
		return Intent{Kind: KindQuote}
	}
	if contactKeywords.MatchString(lower) {
		return Intent{Kind: KindContact}
	}

	return Intent{Kind: KindNeedsCompletion}
}

func matchFirst(patterns []*regexp.Regexp, content string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// Directed reports whether a NeedsCompletion message is actually addressed
// to the assistant in a multi-party conversation: the assistant's name, a
// question mark, or a configured brand keyword all count; a mention of some
// other @user does not.
func Directed(content, assistantName string, brandKeywords []string) bool {
	lower := strings.ToLower(content)
	name := strings.ToLower(strings.TrimSpace(assistantName))

	if name != "" && strings.Contains(lower, name) {
		return true
	}

	// A message @-ing somebody else is a conversation we are not part of.
	if strings.Contains(content, "@") && (name == "" || !strings.Contains(lower, "@"+name)) {
		return false
	}

	if strings.Contains(content, "?") {
		return true
	}

	for _, keyword := range brandKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(lower, keyword) {
			return true
		}
	}

	return false
}
