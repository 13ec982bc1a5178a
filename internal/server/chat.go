package server

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	core "github.com/mohammad-safakhou/deepchat/internal/agent/core"
)

// ChatHandler streams chat completions through the model fallback
// chain. Without an API key it answers with a fixed mock reply and no
// request leaves the process.
type ChatHandler struct {
	Fallback    *core.FallbackCaller
	Offline     bool
	Temperature float64
	MaxTokens   int
	Logger      *log.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("", h.chat)
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if len(req.Messages) == 0 {
		req.Messages = []core.Message{{Role: core.RoleUser, Content: "Hello!"}}
	}

	if h.Offline {
		return c.JSON(http.StatusOK, map[string]string{"text": "Hi! (offline mock reply)"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")

	started := false
	err := h.Fallback.Stream(c.Request().Context(), req.Messages, core.CompletionOptions{
		Temperature: h.Temperature,
		MaxTokens:   h.MaxTokens,
	}, func(chunk string) error {
		if !started {
			resp.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := resp.Write([]byte(chunk)); err != nil {
			return err
		}
		resp.Flush()
		return nil
	})
	if err != nil {
		h.Logger.Printf("chat stream error: %v", err)
		if !started {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Chat failed. Check API key or model list."})
		}
		// headers already sent; nothing more we can deliver
		return nil
	}
	if !started {
		resp.WriteHeader(http.StatusOK)
	}
	return nil
}
