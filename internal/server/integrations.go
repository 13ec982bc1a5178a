package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepchat/internal/sink"
)

// IntegrationsHandler forwards agent output to a named sink. Sink
// failures never affect the agent pipeline; they only fail this call.
type IntegrationsHandler struct {
	Sinks     *sink.Registry
	Telemetry *telemetry.Telemetry
}

func (h *IntegrationsHandler) Register(g *echo.Group) {
	g.POST("", h.forward)
}

func (h *IntegrationsHandler) forward(c echo.Context) error {
	var req integrationRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.App) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "app required")
	}

	err := h.Sinks.Run(c.Request().Context(), req.App, sink.Payload{
		Title:    req.Payload.Title,
		Content:  req.Payload.Content,
		Text:     req.Payload.Text,
		Filename: req.Payload.Filename,
	})
	h.Telemetry.RecordSinkForward(strings.ToLower(req.App), err)
	if err != nil {
		if errors.Is(err, sink.ErrUnsupportedSink) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
