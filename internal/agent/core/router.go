package core

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepchat/tools/web_search"
	searchmodels "github.com/mohammad-safakhou/deepchat/tools/web_search/models"
)

// Intent heuristics gating the search and image paths. Documented
// approximation: ToolFlags is the structural capability declaration,
// the regex only mirrors the phrasing check of the original UI.
var (
	searchIntent = regexp.MustCompile(`(?i)search|find|look\s?up`)
	imageIntent  = regexp.MustCompile(`(?i)image|picture|photo|draw|generate`)
)

// HelpReply is the static capabilities string returned when no tool
// path matches.
const HelpReply = `I can research, summarize, and run deep-research. Try: "search X and summarize" or toggle Deep Research.`

// Router dispatches an agent request to deep research, search (plus
// optional summarization), image generation or the static fallback, in
// fixed priority order. Stateless; every call is independent.
type Router struct {
	researcher *DeepResearcher
	searcher   web_search.WebSearcher
	searchName string
	summarizer *Summarizer
	images     ImageGenerator
	maxResults int
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

func NewRouterWith(researcher *DeepResearcher, searcher web_search.WebSearcher, searchName string, summarizer *Summarizer, images ImageGenerator, maxResults int, tele *telemetry.Telemetry, logger *log.Logger) *Router {
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	}
	return &Router{
		researcher: researcher,
		searcher:   searcher,
		searchName: searchName,
		summarizer: summarizer,
		images:     images,
		maxResults: maxResults,
		telemetry:  tele,
		logger:     logger,
	}
}

// Route runs the agent for one request. Malformed requests are
// rejected before any provider call.
func (r *Router) Route(ctx context.Context, req AgentRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", &MalformedRequestError{Reason: "messages required"}
	}

	prompt := req.LatestUserPrompt()
	r.logger.Printf("running with: %s", prompt)

	// 1) Deep research supersedes all other tools.
	if req.Tools.DeepResearch {
		r.telemetry.RecordRoute("deep_research")
		return r.researcher.Research(ctx, prompt)
	}

	// 2) Search, optionally piped through summarization.
	if req.Tools.WebSearch && searchIntent.MatchString(prompt) {
		r.telemetry.RecordRoute("web_search")
		results, err := r.searcher.Search(ctx, prompt, r.maxResults)
		r.telemetry.RecordSearch(r.searchName, err)
		if err != nil {
			return "", fmt.Errorf("web search: %w", err)
		}
		searchText := formatResultList(results)

		if req.Tools.Summarization {
			summary := r.summarizer.Summarize(ctx, "Summarize the following search notes into a crisp brief with bullet points and a short conclusion:\n\n"+searchText)
			return fmt.Sprintf("🌐 **Search Results for:** %s\n\n%s\n\n---\n\n📝 **Summary**\n\n%s", prompt, searchText, summary), nil
		}
		return fmt.Sprintf("🌐 **Top search results for:** %s\n\n%s", prompt, searchText), nil
	}

	// 3) Image generation.
	if req.Tools.ImageGeneration && imageIntent.MatchString(prompt) {
		r.telemetry.RecordRoute("image")
		link, err := r.images.Generate(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("image generation: %w", err)
		}
		return fmt.Sprintf("🖼️ **Generated Image**\n\n%s", link), nil
	}

	// 4) Static fallback.
	r.telemetry.RecordRoute("fallback")
	return HelpReply, nil
}

func formatResultList(results []searchmodels.Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	lines := make([]string, 0, len(results))
	for i, r := range results {
		lines = append(lines, fmt.Sprintf("%d. %s — %s", i+1, r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}
