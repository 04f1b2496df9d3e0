package usecase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paperforge/paperforge/internal/domain"
)

// Usability score weights for file-pattern reranking
const (
	usableTabularWeight = 2 // .csv / .parquet files
	usableImageWeight   = 1 // .png / .jpg / .jpeg files
	usableBatchWeight   = 1 // CIFAR-style batch files
)

// defaultScoreBandWidth is how many points below the top fuzzy score a
// candidate may sit and still be considered.
const defaultScoreBandWidth = 5.0

// SelectorConfig holds configuration for the selector service
type SelectorConfig struct {
	ScoreBandWidth float64
}

// SelectorService reduces a scored match list to a single winner using a
// deterministic sequence of tie-breakers, recording every decision.
type SelectorService struct {
	scoreBandWidth float64
}

// NewSelectorService creates a new selector service with the given configuration
func NewSelectorService(config SelectorConfig) *SelectorService {
	band := config.ScoreBandWidth
	if band <= 0 {
		band = defaultScoreBandWidth
	}
	return &SelectorService{scoreBandWidth: band}
}

// ChooseBestMatch picks one match using transparent tie-breakers.
// Returns the winner (nil when matches is empty) and the ordered rationale.
//
// The steps run in a fixed order, each narrowing or reordering the current
// subset and appending one rationale line:
//
//  1. anchor on the highest fuzzy score present
//  2. keep candidates within the score band of the anchor
//  3. prefer non-empty file lists (keep all when none qualify)
//  4. rerank by usable file patterns (reorder only, stable)
//  5. prefer an explicit license (keep all when none qualify)
//  6. prefer refs/titles containing the paper's primary name token,
//     when a primary name is supplied
//  7. final tie-break: shortest ref, first seen wins
func (s *SelectorService) ChooseBestMatch(matches []domain.CatalogMatch, paperPrimaryName string) (*domain.CatalogMatch, []string) {
	if len(matches) == 0 {
		return nil, []string{"No matches to choose from"}
	}

	steps := make([]string, 0, 7)
	band := append([]domain.CatalogMatch(nil), matches...)

	// 1. Highest fuzzy score. Computed from the values rather than trusting
	// positional order, so out-of-order input is tolerated.
	topScore := band[0].Score
	for _, m := range band[1:] {
		if m.Score > topScore {
			topScore = m.Score
		}
	}
	steps = append(steps, fmt.Sprintf("Start with highest fuzzy score = %s", formatScore(topScore)))

	// 2. Keep only those within the band of the top score (to avoid picking
	// poor matches). This step always applies.
	threshold := topScore - s.scoreBandWidth
	inBand := band[:0]
	for _, m := range band {
		if m.Score >= threshold {
			inBand = append(inBand, m)
		}
	}
	band = inBand
	steps = append(steps, fmt.Sprintf("%d candidates within %s points of top score", len(band), formatScore(s.scoreBandWidth)))

	// 3. Prefer non-empty file lists
	band, narrowed := filterOrKeep(band, func(m domain.CatalogMatch) bool {
		return len(m.Files) > 0
	})
	if narrowed {
		steps = append(steps, fmt.Sprintf("%d candidates have non-empty file lists", len(band)))
	} else {
		steps = append(steps, fmt.Sprintf("No candidates have non-empty file lists; keeping all %d", len(band)))
	}

	// 4. Rank by usable file patterns. Reorder only; the order produced here
	// is authoritative for the final tie-break.
	sort.SliceStable(band, func(i, j int) bool {
		return usableScore(band[i]) > usableScore(band[j])
	})
	steps = append(steps, "Ranked by usable file patterns (csv/parquet > image files > batch files).")

	// 5. Prefer explicit license
	band, narrowed = filterOrKeep(band, func(m domain.CatalogMatch) bool {
		return m.License != ""
	})
	if narrowed {
		steps = append(steps, fmt.Sprintf("%d candidates have explicit license; prefer those", len(band)))
	} else {
		steps = append(steps, fmt.Sprintf("No candidates have an explicit license; keeping all %d", len(band)))
	}

	// 6. Prefer refs/titles containing a token of the paper name if provided
	if paperPrimaryName != "" {
		token := normalizeToken(paperPrimaryName)
		band, narrowed = filterOrKeep(band, func(m domain.CatalogMatch) bool {
			return strings.Contains(normalizeToken(m.Ref), token) ||
				strings.Contains(normalizeToken(m.Title), token)
		})
		if narrowed {
			steps = append(steps, fmt.Sprintf("Filtered by presence of token '%s' in ref/title", token))
		} else {
			steps = append(steps, fmt.Sprintf("Token '%s' not found in any ref/title; keeping all %d", token, len(band)))
		}
	}

	// 7. Final tie-breaker: shortest ref, first seen wins
	winner := band[0]
	for _, m := range band[1:] {
		if len(m.Ref) < len(winner.Ref) {
			winner = m
		}
	}
	steps = append(steps, fmt.Sprintf("Winner: %s (title='%s')", winner.Ref, winner.Title))

	return &winner, steps
}

// filterOrKeep narrows matches to those satisfying keep, unless that would
// empty the subset, in which case the subset is returned unchanged. The
// second return value reports whether narrowing happened.
func filterOrKeep(matches []domain.CatalogMatch, keep func(domain.CatalogMatch) bool) ([]domain.CatalogMatch, bool) {
	var kept []domain.CatalogMatch
	for _, m := range matches {
		if keep(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return matches, false
	}
	return kept, true
}

// usableScore rates a match by how directly usable its files look:
// tabular files score highest, then common image files, then CIFAR-style
// batch files.
func usableScore(m domain.CatalogMatch) int {
	var hasTabular, hasImage, hasBatch bool
	for _, f := range m.Files {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".parquet") {
			hasTabular = true
		}
		if strings.HasSuffix(name, ".png") || strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg") {
			hasImage = true
		}
		if strings.HasPrefix(name, "data_batch_") || name == "test_batch" {
			hasBatch = true
		}
	}

	score := 0
	if hasTabular {
		score += usableTabularWeight
	}
	if hasImage {
		score += usableImageWeight
	}
	if hasBatch {
		score += usableBatchWeight
	}
	return score
}

// normalizeToken lowercases a name and strips spaces and hyphens so that
// e.g. "ImageNet-1k" and "imagenet1k" compare equal.
func normalizeToken(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// formatScore renders a score without a trailing ".0" for whole values
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
