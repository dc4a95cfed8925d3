package models

import "time"

// Provider identifiers the server accepts for the active LLM backend.
const (
	ProviderOpenAI  = "openai"
	ProviderClaude  = "claude"
	ProviderWatsonx = "watsonx"
	ProviderOllama  = "ollama"
)

// ProviderConfig holds one provider's credential/model fields. The server
// stores all providers side by side; switching the active provider must
// not discard the others' values, so saves always send the full object.
type ProviderConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	Model     string `json:"model,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	ProjectID string `json:"project_id,omitempty"` // watsonx only
}

// LLMSettings is the server-held provider configuration.
type LLMSettings struct {
	SetupCompleted bool           `json:"setup_completed"`
	Provider       string         `json:"provider"`
	OpenAI         ProviderConfig `json:"openai,omitempty"`
	Claude         ProviderConfig `json:"claude,omitempty"`
	Watsonx        ProviderConfig `json:"watsonx,omitempty"`
	Ollama         ProviderConfig `json:"ollama,omitempty"`
}

// AppSettings is the locally persisted desktop configuration
// (single-row table, ID=1).
type AppSettings struct {
	ID        uint   `gorm:"primaryKey"`
	Version   int    `gorm:"not null;default:1"`
	ServerURL string `gorm:"size:512;not null"`
	Theme     string `gorm:"not null;default:system"` // "light" | "dark" | "system"
	Locale    string `gorm:"not null"`
	UpdatedAt time.Time
}

// RecentRepo remembers repositories the user selected, newest first.
// It never restores the active selection; it only feeds a quick-pick.
type RecentRepo struct {
	ID            uint   `gorm:"primaryKey"`
	Owner         string `gorm:"size:255;not null"`
	Name          string `gorm:"size:255;not null"`
	FullName      string `gorm:"size:512;not null;uniqueIndex"`
	DefaultBranch string `gorm:"size:255"`
	Private       bool
	LastUsedAt    time.Time `gorm:"index"`
}
