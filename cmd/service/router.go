package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/app/response"
	"github.com/mobilien/mobi-agent/cmd/service/handler"
	"github.com/mobilien/mobi-agent/cmd/service/middleware"
	"github.com/mobilien/mobi-agent/pkg/metrics"
)

func serve(core *core.Core) *http.Server {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	srv := &http.Server{
		Addr:    core.Cfg().Addr,
		Handler: core.HttpEngine(),
	}
	go func() {
		slog.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server exited", slog.String("error", err.Error()))
		}
	}()
	return srv
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors(s.Core.Cfg().Cors.AllowedOrigins))
	s.Engine.Use(middleware.Observe(s.Core))

	s.Engine.GET("/health", func(c *gin.Context) {
		response.APISuccess(c, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	api := s.Engine.Group("/api")
	{
		api.POST("/chat", s.Chat)
		api.POST("/audio-chat", s.AudioChat)
		api.POST("/file-chat", s.FileChat)
		api.POST("/newsletter", s.SubscribeNewsletter)
		api.POST("/contact", s.SubmitContact)
	}
}
