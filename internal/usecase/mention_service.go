package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/paperforge/paperforge/internal/domain"
)

// kaggleURLRegex finds dataset and competition links embedded in paper text
var kaggleURLRegex = regexp.MustCompile(`(?i)https?://(?:www\.)?kaggle\.com/(?:datasets|competitions)/[^\s\)\]]+`)

// urlMentionConfidence is assigned to mentions scraped from explicit links
const urlMentionConfidence = 0.95

// defaultMentionExcerptChars bounds how much paper text is sent for extraction
const defaultMentionExcerptChars = 80_000

const mentionSystemPrompt = "You are a precise extraction assistant."

// MentionConfig holds configuration for the mention service
type MentionConfig struct {
	ExcerptChars int
}

// MentionService extracts candidate dataset mentions from paper text.
// It combines a deterministic scrape of catalog URLs with model-based
// extraction of named datasets.
type MentionService struct {
	extractor    domain.ChatExtractor
	excerptChars int
}

// NewMentionService creates a new mention service with dependencies.
// extractor may be nil, in which case only the deterministic URL scrape runs.
func NewMentionService(extractor domain.ChatExtractor, config MentionConfig) *MentionService {
	excerpt := config.ExcerptChars
	if excerpt <= 0 {
		excerpt = defaultMentionExcerptChars
	}
	return &MentionService{
		extractor:    extractor,
		excerptChars: excerpt,
	}
}

// ExtractMentions returns candidate datasets mentioned in the paper.
// Model extraction failures degrade to the deterministic URL candidates.
func (s *MentionService) ExtractMentions(ctx context.Context, paperText string) ([]domain.DatasetMention, error) {
	candidates := make([]domain.DatasetMention, 0)

	// 1. deterministic links
	for _, url := range kaggleURLRegex.FindAllString(paperText, -1) {
		candidates = append(candidates, domain.DatasetMention{
			URL:            url,
			ContextSnippet: url,
			Confidence:     urlMentionConfidence,
		})
	}

	// 2. model extraction
	if s.extractor == nil {
		return candidates, nil
	}

	extracted, err := s.extractNamed(ctx, paperText)
	if err != nil {
		log.Printf("[MENTIONS] Model extraction failed, keeping %d URL candidates: %v", len(candidates), err)
		return candidates, nil
	}

	seen := make(map[string]bool)
	for _, c := range extracted {
		key := strings.ToLower(strings.TrimSpace(c.Name)) + "|" + strings.ToLower(strings.TrimSpace(c.URL))
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// PrimaryName returns the first named mention, or "" when all mentions are
// bare URLs.
func PrimaryName(mentions []domain.DatasetMention) string {
	for _, m := range mentions {
		if strings.TrimSpace(m.Name) != "" {
			return m.Name
		}
	}
	return ""
}

func (s *MentionService) extractNamed(ctx context.Context, paperText string) ([]domain.DatasetMention, error) {
	excerpt := paperText
	if len(excerpt) > s.excerptChars {
		excerpt = excerpt[:s.excerptChars]
	}

	prompt := fmt.Sprintf(
		"You read a research paper excerpt. Extract concrete dataset references.\n"+
			"Rules:\n"+
			"- Only return specific named datasets (e.g., 'CIFAR-10', 'UCI Adult', 'COCO'), NOT generic phrases.\n"+
			"- If a dataset URL appears in text, include it; otherwise url_if_any=null.\n"+
			"- Prefer mentions in sections like Data/Dataset/Experimental Setup.\n"+
			"- Return strict JSON: {\"candidates\": [{\"name\": str|null, \"url_if_any\": str|null, "+
			"\"context_snippet\": str, \"confidence\": float}]}\n\n"+
			"Paper excerpt:\n%s", excerpt)

	raw, err := s.extractor.ChatJSON(ctx, mentionSystemPrompt, prompt, "mentions")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Candidates []domain.DatasetMention `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMFailure, err)
	}

	return payload.Candidates, nil
}
