package usecase

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"

	"github.com/paperforge/paperforge/internal/domain"
)

// defaultMaxChecksPerName caps how many catalog results are examined per
// mention name.
const defaultMaxChecksPerName = 8

// ResolverConfig holds configuration for the resolver service
type ResolverConfig struct {
	MaxChecksPerName int
	CacheTTL         time.Duration
}

// ResolverService turns paper dataset mentions into a scored, enriched,
// sorted list of catalog matches.
type ResolverService struct {
	catalog          domain.CatalogClient
	cache            domain.CacheRepository
	maxChecksPerName int
	cacheTTL         time.Duration
}

// NewResolverService creates a new resolver service with dependencies
func NewResolverService(catalog domain.CatalogClient, cache domain.CacheRepository, config ResolverConfig) *ResolverService {
	maxChecks := config.MaxChecksPerName
	if maxChecks <= 0 {
		maxChecks = defaultMaxChecksPerName
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &ResolverService{
		catalog:          catalog,
		cache:            cache,
		maxChecksPerName: maxChecks,
		cacheTTL:         cacheTTL,
	}
}

// ProbeMatches queries the catalog for each named mention and computes a
// fuzzy score between the paper name and each result's title and ref.
// Results are deduplicated by ref across the whole run (first seen wins),
// enriched with a file listing fetched without downloading, and returned
// sorted by score descending.
//
// A failed file listing degrades to an empty file list and an absent size;
// a failed search for one name does not abort the remaining names.
func (s *ResolverService) ProbeMatches(ctx context.Context, mentions []domain.DatasetMention) ([]domain.CatalogMatch, error) {
	results := make([]domain.CatalogMatch, 0)

	// The dedup set lives for exactly one probe run
	seenRefs := make(map[string]bool)

	for _, mention := range mentions {
		name := strings.TrimSpace(mention.Name)
		if name == "" {
			// bare-URL mentions have nothing to query with
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		hits, err := s.searchWithCache(ctx, name)
		if err != nil {
			log.Printf("[RESOLVE] Search failed for %q: %v", name, err)
			continue
		}
		if len(hits) > s.maxChecksPerName {
			hits = hits[:s.maxChecksPerName]
		}

		for _, hit := range hits {
			if hit.Ref == "" || seenRefs[hit.Ref] {
				continue
			}
			seenRefs[hit.Ref] = true

			score := matchScore(name, hit.Title, hit.Ref)

			files, totalMB, err := s.catalog.ListFiles(ctx, hit.Ref)
			if err != nil {
				// Degrade gracefully; one bad candidate must not sink the run
				log.Printf("[RESOLVE] File listing failed for %s: %v", hit.Ref, err)
				files, totalMB = nil, nil
			}
			if files == nil {
				files = []domain.DatasetFile{}
			}

			results = append(results, domain.CatalogMatch{
				PaperName:   name,
				Ref:         hit.Ref,
				Title:       hit.Title,
				URL:         hit.URL,
				License:     hit.License,
				Score:       score,
				TotalSizeMB: totalMB,
				Files:       files,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// searchWithCache serves catalog search results from the TTL cache when
// present, falling back to a live query.
func (s *ResolverService) searchWithCache(ctx context.Context, query string) ([]domain.CatalogHit, error) {
	cacheKey := "kaggle:search:" + strings.ToLower(query)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			if hits, err := decodeCachedHits(cached); err == nil {
				log.Printf("[RESOLVE] Cache hit for query %q (%d results)", query, len(hits))
				return hits, nil
			}
		}
	}

	hits, err := s.catalog.SearchDatasets(ctx, query, s.maxChecksPerName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, hits, s.cacheTTL); err != nil {
			log.Printf("[RESOLVE] Failed to cache results for %q: %v", query, err)
		}
	}

	return hits, nil
}

// decodeCachedHits rebuilds typed hits from the cache's generic value
func decodeCachedHits(cached interface{}) ([]domain.CatalogHit, error) {
	raw, err := json.Marshal(cached)
	if err != nil {
		return nil, err
	}
	var hits []domain.CatalogHit
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// matchScore computes the fuzzy score of a catalog hit against a mention
// name as the maximum of name-vs-title and name-vs-ref similarity.
func matchScore(name, title, ref string) float64 {
	n := strings.ToLower(strings.TrimSpace(name))
	t := strings.ToLower(strings.TrimSpace(title))
	r := strings.ToLower(strings.TrimSpace(ref))

	score := fuzzRatio(n, t)
	if refScore := fuzzRatio(n, r); refScore > score {
		score = refScore
	}
	return score
}

// fuzzRatio is a normalized edit-distance similarity in [0, 100]
func fuzzRatio(a, b string) float64 {
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(sim) * 100
}
