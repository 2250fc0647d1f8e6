package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string        `toml:"addr"`
	Log      Log           `toml:"log"`
	Postgres PGConfig      `toml:"postgres"`
	Cors     CorsConfig    `toml:"cors"`
	AI       AIConfig      `toml:"ai"`
	Prompt   PromptConfig  `toml:"prompt"`
	Context  ContextConfig `toml:"context"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("MOBI_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Cors.FromENV()
	c.AI.FromENV()
	c.Prompt.FromENV()
	c.Context.FromENV()
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("MOBI_API_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type CorsConfig struct {
	// AllowedOrigins empty means allow any origin.
	AllowedOrigins []string `toml:"allowed_origins"`
}

func (c *CorsConfig) FromENV() {
	if v := os.Getenv("MOBI_CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
}

type AIConfig struct {
	Provider    string  `toml:"provider"` // openrouter or mistral
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	TimeoutSec  int     `toml:"timeout_seconds"`

	// HistoryLimit bounds how many prior turns are replayed into the
	// prompt; 0 sends only the current turn. The deployed widget
	// revisions disagreed on this, so it stays a config policy.
	HistoryLimit int `toml:"history_limit"`

	Referer string `toml:"referer"` // openrouter attribution
	Title   string `toml:"title"`

	Transcribe TranscribeConfig `toml:"transcribe"`
}

func (a *AIConfig) FromENV() {
	a.Provider = os.Getenv("MOBI_AI_PROVIDER")
	a.APIKey = os.Getenv("MOBI_AGENT_API_KEY")
	a.BaseURL = os.Getenv("MOBI_AI_BASE_URL")
	a.Model = os.Getenv("MOBI_AI_MODEL")
	if v := os.Getenv("MOBI_AI_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			a.HistoryLimit = n
		}
	}
	a.Transcribe.FromENV()
}

func (a AIConfig) GetMaxTokens() int {
	if a.MaxTokens <= 0 {
		return 500
	}
	return a.MaxTokens
}

func (a AIConfig) GetTemperature() float32 {
	if a.Temperature <= 0 {
		return 0.7
	}
	return float32(a.Temperature)
}

func (a AIConfig) GetTimeout() time.Duration {
	if a.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSec) * time.Second
}

type TranscribeConfig struct {
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
}

func (t *TranscribeConfig) FromENV() {
	t.APIKey = os.Getenv("MOBI_OPENAI_API_KEY")
	t.Language = os.Getenv("MOBI_TRANSCRIBE_LANGUAGE")
}

// PromptConfig points at the instruction template and the static context
// documents loaded once at startup. Base overrides the builtin template
// when no file is configured.
type PromptConfig struct {
	Base         string `toml:"base"`
	TemplatePath string `toml:"template_path"`
	GraphPath    string `toml:"graph_path"`
	PricesPath   string `toml:"prices_path"`
}

func (p *PromptConfig) FromENV() {
	p.TemplatePath = os.Getenv("MOBI_PROMPT_TEMPLATE_PATH")
	p.GraphPath = os.Getenv("MOBI_PROMPT_GRAPH_PATH")
	p.PricesPath = os.Getenv("MOBI_PROMPT_PRICES_PATH")
}

// ContextConfig selects the database-backed context rows merged into the
// prompt. An empty KeyName loads every row of the category.
type ContextConfig struct {
	Category string `toml:"category"`
	KeyName  string `toml:"key_name"`
	Label    string `toml:"label"`
}

func (c *ContextConfig) FromENV() {
	c.Category = os.Getenv("MOBI_CONTEXT_CATEGORY")
	c.KeyName = os.Getenv("MOBI_CONTEXT_KEY")
}

func (c ContextConfig) GetCategory() string {
	if c.Category == "" {
		return "charging_prices"
	}
	return c.Category
}

func (c ContextConfig) GetLabel() string {
	if c.Label == "" {
		return "EV töltési árak Magyarországon"
	}
	return c.Label
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("MOBI_API_LOG_LEVEL")
	l.Path = os.Getenv("MOBI_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
