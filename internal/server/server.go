package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/deepchat/config"
	core "github.com/mohammad-safakhou/deepchat/internal/agent/core"
	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepchat/internal/sink"
	"github.com/mohammad-safakhou/deepchat/internal/store"
)

// Run wires the agent pipeline and serves the HTTP API. Redis and
// Postgres are optional: without redis there is no chat history,
// without postgres there is no report archive; the agent itself needs
// neither.
func Run(cfg *config.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	tele := telemetry.NewTelemetry(cfg.Telemetry, prometheus.DefaultRegisterer)

	agentLogger := log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	agent, err := core.NewRouter(cfg, tele, agentLogger)
	if err != nil {
		return err
	}

	var history *History
	if redisAddr := cfg.Storage.Redis.Addr(); redisAddr != "" {
		history, err = NewHistory(redisAddr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			return err
		}
	} else {
		baseLogger.Printf("redis not configured; chat history disabled")
	}

	var archive *store.Store
	if dsn := cfg.Storage.Postgres.DSN(); dsn != "" {
		archive, err = store.NewWithDSN(context.Background(), dsn)
		if err != nil {
			return err
		}
	} else {
		baseLogger.Printf("postgres not configured; report archive disabled")
	}

	api := e.Group("/api")

	ah := &AgentHandler{Agent: agent, History: history, Archive: archive, Logger: agentLogger}
	ah.Register(api.Group("/agent"))

	provider := core.NewLLMProvider(cfg.LLM)
	ch := &ChatHandler{
		Fallback:    core.NewFallbackCaller(cfg.LLM, provider, tele, agentLogger),
		Offline:     cfg.LLM.APIKey == "",
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Logger:      baseLogger,
	}
	ch.Register(api.Group("/chat"))

	ih := &IntegrationsHandler{Sinks: sink.NewRegistry(cfg.Sinks), Telemetry: tele}
	ih.Register(api.Group("/integrations"))

	if history != nil {
		(&ChatsHandler{History: history}).Register(api.Group("/chats"))
	}
	if archive != nil {
		(&ReportsHandler{Store: archive}).Register(api.Group("/reports"))
	}

	if addr == "" {
		addr = cfg.Server.Address
		if addr == "" {
			addr = ":10002"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
