// Package curator turns one article into marketing copy and candidate
// images: an AI text call plus an image search, merged into a single
// CuratedContent. Both collaborators degrade rather than fail the request.
package curator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/phaseloop/curator/internal/imagesearch"
	"github.com/phaseloop/curator/internal/model"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ImageSearcher interface {
	Search(ctx context.Context, query string, start int) ([]imagesearch.Result, error)
}

const (
	excerptFetchTimeout = 10 * time.Second
	maxExcerptLen       = 1200
)

type Curator struct {
	generator Generator
	images    ImageSearcher
	client    *http.Client
}

func New(generator Generator, images ImageSearcher) *Curator {
	return &Curator{
		generator: generator,
		images:    images,
		client:    &http.Client{Timeout: excerptFetchTimeout},
	}
}

// Curate produces content for one article. An AI failure yields the fixed
// placeholder object; an image search failure yields an empty image list.
// Neither propagates an error to the caller.
func (c *Curator) Curate(ctx context.Context, article model.CurateRequest) model.CuratedContent {
	images := c.searchImages(ctx, article.Title+" "+article.Source)

	raw, err := c.generator.Generate(ctx, c.buildPrompt(ctx, article))
	if err != nil {
		log.Printf("[ERROR] generation failed for %q: %v", article.Title, err)
		return placeholderContent(images, article.Source)
	}

	gen, err := parseGenerated(raw)
	if err != nil {
		log.Printf("[ERROR] unusable generation for %q: %v", article.Title, err)
		return placeholderContent(images, article.Source)
	}

	log.Printf("[INFO] generated content for: %s", article.Title)

	return model.CuratedContent{
		Headline:       gen.Headline,
		Description:    gen.Description,
		Caption:        gen.Caption,
		Images:         images,
		OriginalSource: article.Source,
	}
}

func (c *Curator) searchImages(ctx context.Context, query string) []string {
	results, err := c.images.Search(ctx, query, 0)
	if err != nil {
		log.Printf("[ERROR] image search failed for %q: %v", query, err)
		return []string{}
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return urls
}

const promptFormat = `You are a content curator for "Phase Loop Records", focused on deep, technical electronic/rock music news.
TASK: Synthesize the news based on the title. Generate:
1. HEADLINE (5-7 words, bold, technical style).
2. SHORT DESCRIPTION (max 40 words).
3. SOCIAL MEDIA CAPTION (max 100 words). Include #PhaseLoopRecords and mention source (%s).
NEWS TITLE: %q
%s
This response MUST be in valid JSON format: {"headline": "...", "description": "...", "caption": "..."}`

func (c *Curator) buildPrompt(ctx context.Context, article model.CurateRequest) string {
	var contextBlock string
	if excerpt := c.articleExcerpt(ctx, article.Link); excerpt != "" {
		contextBlock = "ARTICLE EXCERPT: " + excerpt + "\n"
	}
	return fmt.Sprintf(promptFormat, article.Source, article.Title, contextBlock)
}

var redundantNewLines = regexp.MustCompile(`\n{2,}`)

// articleExcerpt pulls readable body text from the article link to ground
// the generation. Strictly best effort: any failure returns an empty string.
func (c *Curator) articleExcerpt(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[INFO] skipping article excerpt for %s: %v", link, err)
		return ""
	}
	defer resp.Body.Close()

	doc, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return ""
	}

	text := redundantNewLines.ReplaceAllString(strings.TrimSpace(doc.TextContent), "\n")
	runes := []rune(text)
	if len(runes) > maxExcerptLen {
		text = string(runes[:maxExcerptLen])
	}
	return text
}

type generated struct {
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Caption     string `json:"caption"`
}

// parseGenerated is the single tolerant-parse path for model output: strip
// code fences, unmarshal, and as a last resort cut the outermost JSON object
// out of surrounding prose. Missing required fields are an error here so
// callers never see a half-filled result.
func parseGenerated(text string) (generated, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var g generated
	if err := json.Unmarshal([]byte(cleaned), &g); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return generated{}, fmt.Errorf("parse generated content: %w", err)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &g); err != nil {
			return generated{}, fmt.Errorf("parse generated content: %w", err)
		}
	}

	if g.Headline == "" || g.Description == "" || g.Caption == "" {
		return generated{}, errors.New("generated content missing required fields")
	}

	return g, nil
}

// placeholderContent is what the client sees when generation fails: visibly
// broken copy, but still a renderable object with whatever images were found.
func placeholderContent(images []string, source string) model.CuratedContent {
	return model.CuratedContent{
		Headline:       "AI Failed",
		Description:    "Try again.",
		Caption:        "Error.",
		Images:         images,
		OriginalSource: source,
	}
}
