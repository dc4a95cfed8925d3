package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/models"
	"gitpilot/internal/repositories"
)

var validProviders = map[string]bool{
	models.ProviderOpenAI:  true,
	models.ProviderClaude:  true,
	models.ProviderWatsonx: true,
	models.ProviderOllama:  true,
}

// SettingsService backs the settings forms and the first-run wizard.
// Server-held LLM configuration is loaded per view and saved whole so
// switching the active provider never discards the other providers'
// stored fields; local desktop preferences live in the sqlite table.
type SettingsService struct {
	ctx context.Context
	api *apiclient.Client
	app repositories.AppSettingsRepository
}

func NewSettingsService(api *apiclient.Client, app repositories.AppSettingsRepository) *SettingsService {
	return &SettingsService{api: api, app: app}
}

func (s *SettingsService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Load fetches the server-held settings; setup_completed gates the
// first-run wizard.
func (s *SettingsService) Load(ctx context.Context) (*models.LLMSettings, error) {
	return s.api.GetSettings(ctx)
}

// Save validates the active provider and persists the full settings
// object server-side.
func (s *SettingsService) Save(ctx context.Context, settings *models.LLMSettings) (*models.LLMSettings, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}
	provider := strings.TrimSpace(settings.Provider)
	if !validProviders[provider] {
		return nil, errors.New("provider must be one of openai, claude, watsonx, ollama")
	}
	settings.Provider = provider
	return s.api.SaveLLMSettings(ctx, settings)
}

// DiscoverModels lists model identifiers for a provider. The result is
// offered as a pickable shortcut; the model field is never overwritten
// automatically.
func (s *SettingsService) DiscoverModels(ctx context.Context, provider string) ([]string, error) {
	provider = strings.TrimSpace(provider)
	if !validProviders[provider] {
		return nil, errors.New("provider must be one of openai, claude, watsonx, ollama")
	}
	return s.api.ListProviderModels(ctx, provider)
}

// GetAppSettings returns the local desktop configuration.
func (s *SettingsService) GetAppSettings() (*models.AppSettings, error) {
	return s.app.Get(context.Background())
}

// UpdateAppSettings updates theme and locale and returns the saved row.
// The server URL is fixed at startup and not editable here.
func (s *SettingsService) UpdateAppSettings(theme, locale string) (*models.AppSettings, error) {
	if theme != "light" && theme != "dark" && theme != "system" {
		return nil, errors.New("theme must be 'light', 'dark', or 'system'")
	}
	if locale == "" {
		return nil, errors.New("locale is required")
	}

	current, err := s.app.Get(context.Background())
	if err != nil {
		return nil, err
	}
	current.Theme = theme
	current.Locale = locale
	current.UpdatedAt = time.Now()
	if err := s.app.Update(context.Background(), current); err != nil {
		return nil, err
	}
	return current, nil
}
