package briefing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Source is a web page the generator cited
type Source struct {
	Title string
	URI   string
}

// Briefing is a generated daily briefing
type Briefing struct {
	Title    string
	Markdown string
	Sources  []Source
}

// Document returns the briefing with its sources appended as a Markdown list
func (b *Briefing) Document() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(b.Markdown))
	if len(b.Sources) > 0 {
		sb.WriteString("\n\n### Sources\n\n")
		for _, s := range b.Sources {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			fmt.Fprintf(&sb, "- [%s](%s)\n", title, s.URI)
		}
	}
	return sb.String()
}

// Generator turns a prompt into a briefing
type Generator interface {
	Generate(ctx context.Context, p Prompt) (*Briefing, error)
}

// modelsAPI is the part of the genai client used here
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator generates briefings with the Gemini API
type GeminiGenerator struct {
	models  modelsAPI
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiGenerator creates a client for apiKey. An empty key returns ErrUnavailable.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		models:  client.Models,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (*Briefing, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.SystemInstruction, genai.RoleUser),
	}
	if p.UseGrounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	g.logger.Debug("Requesting briefing",
		zap.String("model", g.model),
		zap.String("date", p.Date.Format("2006-01-02")),
		zap.String("status", p.Status.String()),
		zap.Bool("grounding", p.UseGrounding))

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(p.Query), config)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty briefing returned")
	}

	b := &Briefing{Title: p.Title, Markdown: text, Sources: sources(resp)}
	g.logger.Info("Briefing generated",
		zap.String("status", p.Status.String()),
		zap.Int("sources", len(b.Sources)),
		zap.Duration("took", time.Since(start)))
	return b, nil
}

func sources(resp *genai.GenerateContentResponse) []Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
