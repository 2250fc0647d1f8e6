package core

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mobilien/mobi-agent/app/store/sqlstore"
	"github.com/mobilien/mobi-agent/pkg/ai"
	"github.com/mobilien/mobi-agent/pkg/ai/mistral"
	"github.com/mobilien/mobi-agent/pkg/ai/openrouter"
	"github.com/mobilien/mobi-agent/pkg/ai/whisper"
)

// DEFAULT_PROMPT_TEMPLATE is the Mobi persona used when no template file
// is configured.
const DEFAULT_PROMPT_TEMPLATE = `Te vagy Mobi, az e-mobilitási asszisztens. Segítesz az elektromos járművek töltésével, árazással és e-mobilitási kérdésekkel kapcsolatban.

FONTOS: Csak a mellékelt kontextus adatokat használd fel a válaszadáshoz. Ha nincs releváns információ a kontextusban, mondd el, hogy nem tudsz pontos választ adni.`

type Core struct {
	cfg CoreConfig

	stores     func() *sqlstore.Provider
	httpEngine *gin.Engine
	metrics    *Metrics

	chatDriver       ai.ChatDriver
	transcribeDriver ai.TranscribeDriver

	promptTemplate string
	graphContext   json.RawMessage
	staticPrices   json.RawMessage
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("mobilien", "agent"),
		httpEngine: gin.New(),
	}

	setupSqlStore(core)
	core.chatDriver = setupChatDriver(cfg.AI)
	core.transcribeDriver = setupTranscribeDriver(cfg.AI.Transcribe)
	core.loadPromptAssets()

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	slog.Info("sql store ready")
}

// setupChatDriver returns nil when no key is configured; the chat
// endpoints answer with a configuration error instead of crashing.
func setupChatDriver(cfg AIConfig) ai.ChatDriver {
	if cfg.APIKey == "" {
		slog.Warn("chat provider api key missing, chat endpoints disabled")
		return nil
	}

	switch cfg.Provider {
	case mistral.NAME:
		return mistral.New(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return openrouter.New(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Referer, cfg.Title)
	}
}

func setupTranscribeDriver(cfg TranscribeConfig) ai.TranscribeDriver {
	if cfg.APIKey == "" {
		slog.Warn("transcription api key missing, audio chat disabled")
		return nil
	}
	return whisper.New(cfg.APIKey, cfg.Model, cfg.Language)
}

// loadPromptAssets reads the instruction template and the static context
// documents once at startup. Every failure degrades to "absent" with a
// warning; prompt assembly simply omits the missing piece.
func (s *Core) loadPromptAssets() {
	s.promptTemplate = s.cfg.Prompt.Base
	if s.cfg.Prompt.TemplatePath != "" {
		raw, err := os.ReadFile(s.cfg.Prompt.TemplatePath)
		if err != nil {
			slog.Warn("failed to load prompt template", slog.String("path", s.cfg.Prompt.TemplatePath), slog.String("error", err.Error()))
		} else {
			s.promptTemplate = string(raw)
		}
	}
	if s.promptTemplate == "" {
		s.promptTemplate = DEFAULT_PROMPT_TEMPLATE
	}

	s.graphContext = loadStaticContext(s.cfg.Prompt.GraphPath)
	s.staticPrices = loadStaticContext(s.cfg.Prompt.PricesPath)
}

func loadStaticContext(path string) json.RawMessage {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to load static context", slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}
	if !json.Valid(raw) {
		slog.Warn("static context is not valid json", slog.String("path", path))
		return nil
	}
	return raw
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) ChatDriver() ai.ChatDriver {
	return s.chatDriver
}

func (s *Core) TranscribeDriver() ai.TranscribeDriver {
	return s.transcribeDriver
}

// InstructionTemplate renders the configured template with the graph
// document substituted in.
func (s *Core) InstructionTemplate() string {
	return ai.RenderTemplate(s.promptTemplate, s.graphContext)
}

func (s *Core) StaticPriceContext() json.RawMessage {
	return s.staticPrices
}

func (s *Core) Close() error {
	return s.stores().Close()
}
