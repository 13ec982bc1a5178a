package server

import core "github.com/mohammad-safakhou/deepchat/internal/agent/core"

type runRequest struct {
	Messages []core.Message `json:"messages"`
	Tools    core.ToolFlags `json:"tools"`
	Files    []core.File    `json:"files,omitempty"`
	ChatID   string         `json:"chat_id,omitempty"`
}

type runResponse struct {
	Result string `json:"result"`
}

type chatRequest struct {
	Messages []core.Message `json:"messages"`
}

type integrationRequest struct {
	App     string `json:"app"`
	Payload struct {
		Title    string `json:"title,omitempty"`
		Content  string `json:"content,omitempty"`
		Text     string `json:"text,omitempty"`
		Filename string `json:"filename,omitempty"`
	} `json:"payload"`
}
