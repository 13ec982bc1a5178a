package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepchat/tools/web_fetch"
	"github.com/mohammad-safakhou/deepchat/tools/web_search"
	searchmodels "github.com/mohammad-safakhou/deepchat/tools/web_search/models"
	"github.com/mohammad-safakhou/deepchat/utils"
)

const snippetChars = 400

const offlineBrief = "**Summary (offline mock)**\n\n- Could not reach the language model provider. Configure llm.api_key for full synthesis."

const synthesisTemplate = `You are an expert research analyst. Merge and synthesize the findings below into a concise, truthful brief with sections:
- Executive Summary (5–8 bullet points)
- Key Insights
- Risks / Unknowns
- Trends & Outlook
- Recommended Next Steps

Strict rules:
- Cite by hyperlink only in a "Sources" section (do not inline number them).
- Do NOT hallucinate. If uncertain, say so.

--- BEGIN FINDINGS ---
%s
--- END FINDINGS ---`

// DeepResearcher coordinates expansion, fan-out search, optional page
// enrichment and synthesis into one formatted report.
type DeepResearcher struct {
	expander   QueryExpander
	searcher   web_search.WebSearcher
	searchName string
	fetcher    web_fetch.WebFetcher // nil disables page enrichment
	summarizer *Summarizer
	maxResults int
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

func NewDeepResearcher(expander QueryExpander, searcher web_search.WebSearcher, searchName string, fetcher web_fetch.WebFetcher, summarizer *Summarizer, maxResults int, tele *telemetry.Telemetry, logger *log.Logger) *DeepResearcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags)
	}
	return &DeepResearcher{
		expander:   expander,
		searcher:   searcher,
		searchName: searchName,
		fetcher:    fetcher,
		summarizer: summarizer,
		maxResults: maxResults,
		telemetry:  tele,
		logger:     logger,
	}
}

// Research runs one full round for the prompt and returns the
// formatted report. A failed search aborts the round; a failed
// synthesis degrades to the offline brief.
func (d *DeepResearcher) Research(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	subQueries, err := d.expander.Expand(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", prompt, err)
	}
	d.logger.Printf("researching %q with %d sub-queries", prompt, len(subQueries))

	blocks := make([]SearchBlock, len(subQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range subQueries {
		i, q := i, q
		g.Go(func() error {
			results, err := d.searcher.Search(gctx, q, d.maxResults)
			d.telemetry.RecordSearch(d.searchName, err)
			if err != nil {
				return err
			}
			blocks[i] = SearchBlock{Query: q, Results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("research round failed: %w", err)
	}

	extracts := d.enrich(ctx, blocks)
	packet := buildPacket(blocks, extracts)

	summary := d.summarizer.Summarize(ctx, fmt.Sprintf(synthesisTemplate, packet))
	if summary == SummaryUnavailable {
		summary = offlineBrief
	}

	report := strings.Join([]string{
		fmt.Sprintf("# Deep Research: %s", prompt),
		"",
		"## Executive Brief",
		strings.TrimSpace(summary),
		"",
		"## Sources",
		formatSources(dedupSources(blocks)),
	}, "\n")

	d.telemetry.RecordResearch(time.Since(start))
	return report, nil
}

// enrich fetches each block's top hit and extracts readable text.
// Failures are skipped; enrichment only ever adds to the packet.
func (d *DeepResearcher) enrich(ctx context.Context, blocks []SearchBlock) map[string]string {
	if d.fetcher == nil {
		return nil
	}
	extracts := make(map[string]string)
	for _, b := range blocks {
		if len(b.Results) == 0 || b.Results[0].URL == "" {
			continue
		}
		link := b.Results[0].URL
		if _, ok := extracts[link]; ok {
			continue
		}
		page, err := d.fetcher.Exec(ctx, link)
		if err != nil {
			d.logger.Printf("enrichment skipped for %s: %v", utils.Hostname(link), err)
			continue
		}
		if page.Text != "" {
			extracts[link] = page.Text
		}
	}
	return extracts
}

// buildPacket concatenates per-sub-query result blocks into the raw
// findings text handed to synthesis.
func buildPacket(blocks []SearchBlock, extracts map[string]string) string {
	var sections []string
	for _, b := range blocks {
		var items []string
		for _, r := range b.Results {
			item := fmt.Sprintf("• %s\n  URL: %s\n  Notes: %s", r.Title, r.URL, utils.Truncate(r.Content, snippetChars))
			if text, ok := extracts[r.URL]; ok {
				item += fmt.Sprintf("\n  Extract: %s", utils.Truncate(text, snippetChars*2))
			}
			items = append(items, item)
		}
		body := "• No results"
		if len(items) > 0 {
			body = strings.Join(items, "\n")
		}
		sections = append(sections, fmt.Sprintf("### Query: %s\n%s", b.Query, body))
	}
	return strings.Join(sections, "\n\n")
}

// dedupSources builds the unique source list across blocks, keyed by
// URL, in first-seen order.
func dedupSources(blocks []SearchBlock) []searchmodels.Result {
	seen := make(map[string]struct{})
	var sources []searchmodels.Result
	for _, b := range blocks {
		for _, r := range b.Results {
			if r.URL == "" {
				continue
			}
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			sources = append(sources, r)
		}
	}
	return sources
}

func formatSources(sources []searchmodels.Result) string {
	if len(sources) == 0 {
		return "_No sources available._"
	}
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = utils.Hostname(s.URL)
		}
		lines = append(lines, fmt.Sprintf("- **%s** — %s", title, s.URL))
	}
	return strings.Join(lines, "\n")
}
