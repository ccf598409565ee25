package briefing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func classify(t *testing.T, pattern string, offset int) rotation.Classification {
	t.Helper()
	cfg, err := rotation.ParseConfig("2024-01-01", pattern)
	require.NoError(t, err)
	return rotation.Classify(cfg.Anchor.AddDate(0, 0, offset), cfg)
}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		offset    int
		title     string
		grounding bool
	}{
		{name: "first day of hitch", pattern: "14/14", offset: 0, title: "Hitch Start Checklist"},
		{name: "crossover day", pattern: "14/14", offset: 13, title: "Crossover Checklist"},
		{name: "mid hitch", pattern: "14/14", offset: 5, title: "Daily Focus"},
		{name: "travel home", pattern: "14/14", offset: 14, title: "Travel Day Checklist"},
		{name: "travel out", pattern: "14/14", offset: 27, title: "Travel Day Checklist"},
		{name: "home", pattern: "14/14", offset: 20, title: "Day at Home", grounding: true},
		{name: "single on day is first", pattern: "1/3", offset: 4, title: "Hitch Start Checklist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPrompt(classify(t, tt.pattern, tt.offset))
			require.NoError(t, err)
			assert.Equal(t, tt.title, p.Title)
			assert.Equal(t, tt.grounding, p.UseGrounding)
			assert.NotEmpty(t, p.SystemInstruction)
			assert.Contains(t, p.Query, p.Date.Format("Monday, January 2"))
		})
	}
}

func TestBuildPrompt_Undefined(t *testing.T) {
	_, err := BuildPrompt(classify(t, "14/14", -1))
	assert.ErrorIs(t, err, ErrNoRotation)
}

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
	query  string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.query = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(text string, chunks ...*genai.GroundingChunk) *genai.GenerateContentResponse {
	cand := &genai.Candidate{
		Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
	}
	if len(chunks) > 0 {
		cand.GroundingMetadata = &genai.GroundingMetadata{GroundingChunks: chunks}
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{cand}}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	fake := &fakeModels{resp: textResponse("## Daily Focus\n\n* Check permits",
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{URI: "https://example.com/a", Title: "Event A"}},
		&genai.GroundingChunk{},
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{URI: "https://example.com/b"}},
	)}
	g := &GeminiGenerator{models: fake, model: DefaultModel, timeout: time.Second, logger: zap.NewNop()}

	p, err := BuildPrompt(classify(t, "14/14", 20))
	require.NoError(t, err)

	b, err := g.Generate(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, fake.model)
	assert.Equal(t, p.Query, fake.query)
	require.Len(t, fake.config.Tools, 1)
	assert.NotNil(t, fake.config.Tools[0].GoogleSearch)

	assert.Equal(t, "Day at Home", b.Title)
	assert.Equal(t, []Source{
		{Title: "Event A", URI: "https://example.com/a"},
		{URI: "https://example.com/b"},
	}, b.Sources)

	doc := b.Document()
	assert.Contains(t, doc, "* Check permits")
	assert.Contains(t, doc, "### Sources")
	assert.Contains(t, doc, "- [Event A](https://example.com/a)")
	assert.Contains(t, doc, "- [https://example.com/b](https://example.com/b)")
}

func TestGeminiGenerator_NoGroundingOffshore(t *testing.T) {
	fake := &fakeModels{resp: textResponse("ok")}
	g := &GeminiGenerator{models: fake, model: DefaultModel, logger: zap.NewNop()}

	p, err := BuildPrompt(classify(t, "14/14", 3))
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, fake.config.Tools)
}

func TestGeminiGenerator_Errors(t *testing.T) {
	p, err := BuildPrompt(classify(t, "14/14", 3))
	require.NoError(t, err)

	g := &GeminiGenerator{models: &fakeModels{err: errors.New("quota")}, model: DefaultModel, logger: zap.NewNop()}
	_, err = g.Generate(context.Background(), p)
	assert.ErrorContains(t, err, "quota")

	g = &GeminiGenerator{models: &fakeModels{resp: textResponse("  ")}, model: DefaultModel, logger: zap.NewNop()}
	_, err = g.Generate(context.Background(), p)
	assert.Error(t, err)
}

func TestNewGeminiGenerator_NoKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", time.Second, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal(UnavailableNotice, 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Unavailable")
}
