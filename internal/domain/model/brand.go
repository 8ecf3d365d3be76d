package model

type OwnerStatus string

const (
	OwnerOnline OwnerStatus = "online"
	OwnerBusy   OwnerStatus = "busy"
	OwnerAway   OwnerStatus = "away"
)

type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

type SocialLinks struct {
	Telegram  string `json:"telegram" yaml:"telegram"`
	GitHub    string `json:"github" yaml:"github"`
	WhatsApp  string `json:"whatsapp" yaml:"whatsapp"`
	Email     string `json:"email" yaml:"email"`
	Portfolio string `json:"portfolio" yaml:"portfolio"`
}

// BrandProfile is the owner's public persona and presence. It is loaded
// once at startup and swapped wholesale on an explicit admin reload.
type BrandProfile struct {
	OwnerName   string      `json:"owner_name" yaml:"owner_name"`
	Persona     string      `json:"persona" yaml:"persona"`
	Status      OwnerStatus `json:"status" yaml:"status"`
	Keywords    []string    `json:"keywords" yaml:"keywords"`
	Links       SocialLinks `json:"links" yaml:"links"`
	FAQs        []FAQ       `json:"faqs" yaml:"faqs"`
	ContactLine string      `json:"contact_line" yaml:"contact_line"`
}
