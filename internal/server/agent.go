package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	core "github.com/mohammad-safakhou/deepchat/internal/agent/core"
	"github.com/mohammad-safakhou/deepchat/internal/store"
)

// AgentHandler runs the agent router for one request. History and
// Archive are optional; when set, the turn is appended to the chat and
// deep research reports are archived best-effort.
type AgentHandler struct {
	Agent   *core.Router
	History *History
	Archive *store.Store
	Logger  *log.Logger
}

func (h *AgentHandler) Register(g *echo.Group) {
	g.POST("/run", h.run)
	g.GET("/run", h.methodNotAllowed)
}

func (h *AgentHandler) run(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil || req.Messages == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	result, err := h.Agent.Route(ctx, core.AgentRequest{Messages: req.Messages, Tools: req.Tools, Files: req.Files})
	if err != nil {
		var malformed *core.MalformedRequestError
		if errors.As(err, &malformed) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": malformed.Reason})
		}
		h.Logger.Printf("agent error: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Agent execution failed"})
	}

	if h.History != nil && req.ChatID != "" {
		prompt := core.AgentRequest{Messages: req.Messages}.LatestUserPrompt()
		if err := h.History.Append(ctx, req.ChatID,
			core.Message{Role: core.RoleUser, Content: prompt},
			core.Message{Role: core.RoleAssistant, Content: result},
		); err != nil {
			h.Logger.Printf("history append failed for chat %s: %v", req.ChatID, err)
		}
	}

	if h.Archive != nil && req.Tools.DeepResearch {
		topic := core.AgentRequest{Messages: req.Messages}.LatestUserPrompt()
		if _, err := h.Archive.SaveReport(ctx, topic, result); err != nil {
			h.Logger.Printf("report archive failed: %v", err)
		}
	}

	return c.JSON(http.StatusOK, runResponse{Result: result})
}

func (h *AgentHandler) methodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, map[string]string{
		"message": "This endpoint only supports POST. Please send a JSON payload.",
	})
}
