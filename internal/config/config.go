package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Config aggregates every service setting.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Auth    AuthConfig
	Storage StorageConfig
	Client  ClientConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Auth:    loadAuthConfig(),
		Storage: loadStorageConfig(),
		Client:  loadClientConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DefaultModels is the ordered fallback list, most to least capable.
var DefaultModels = []string{
	"gemini-1.0-pro",
	"gemini-pro",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// AIConfig describes the Gemini binding.
type AIConfig struct {
	APIKey      string
	Models      []string
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// Enabled reports whether the required API key is present.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewClient builds the underlying Gemini API client.
func (c AIConfig) NewClient(ctx context.Context) (*genai.Client, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewChatModel binds one chat model for the given model identifier, carrying
// the fixed safety table and generation parameters.
func (c AIConfig) NewChatModel(ctx context.Context, client *genai.Client, modelName string) (model.BaseChatModel, error) {
	temperature := float32(c.Temperature)
	topP := float32(c.TopP)
	topK := int32(c.TopK)
	maxTokens := c.MaxTokens

	blockMedium := genai.HarmBlockThresholdBlockMediumAndAbove
	cfg := &gemini.Config{
		Client:      client,
		Model:       modelName,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
		TopK:        &topK,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: blockMedium},
			{Category: genai.HarmCategoryHateSpeech, Threshold: blockMedium},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: blockMedium},
			{Category: genai.HarmCategoryDangerousContent, Threshold: blockMedium},
		},
	}

	return gemini.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseFloatEnv("GEMINI_TEMPERATURE", 0.8)
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseFloatEnv("GEMINI_TOP_P", 0.95)
	if err != nil {
		return AIConfig{}, err
	}

	topK, err := parseIntEnv("GEMINI_TOP_K", 40)
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseIntEnv("GEMINI_MAX_TOKENS", 1024)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Models:      parseModelsEnv("GEMINI_MODELS"),
		Temperature: temperature,
		TopP:        topP,
		TopK:        topK,
		MaxTokens:   maxTokens,
	}, nil
}

// AuthConfig holds the bearer-token signing secret.
type AuthConfig struct {
	JWTSecret string
}

// Enabled reports whether the signing secret is present.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{JWTSecret: strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))}
}

// StorageConfig points at the on-disk data directory.
type StorageConfig struct {
	DataDir string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{DataDir: getEnvOrDefault("DATA_DIR", "data")}
}

// ClientConfig describes how the client side reaches the persistence API.
type ClientConfig struct {
	APIURL string
	UserID string
}

func loadClientConfig() ClientConfig {
	return ClientConfig{
		APIURL: getEnvOrDefault("API_URL", "http://localhost:5000/api"),
		UserID: strings.TrimSpace(os.Getenv("CHAT_USER_ID")),
	}
}

func parseModelsEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return append([]string(nil), DefaultModels...)
	}

	var models []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			models = append(models, name)
		}
	}
	if len(models) == 0 {
		return append([]string(nil), DefaultModels...)
	}
	return models
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
