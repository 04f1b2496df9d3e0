// Package pipeline orchestrates the paper-to-scaffold run: paper ingestion,
// mention extraction, catalog resolution, selection, download, sampling,
// profiling, EDA, and code scaffolding.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/paperforge/paperforge/internal/dataset"
	"github.com/paperforge/paperforge/internal/domain"
	"github.com/paperforge/paperforge/internal/eda"
	"github.com/paperforge/paperforge/internal/scaffold"
	"github.com/paperforge/paperforge/internal/usecase"
)

// alternativesLimit caps how many runner-up matches selection.json records
const alternativesLimit = 10

// sampleGridSize is the side length of the EDA sample grid
const sampleGridSize = 3

// PaperLoader loads paper text from a path or URL
type PaperLoader interface {
	Load(ctx context.Context, source string) (*domain.PaperDocument, error)
}

// Options control a single pipeline run
type Options struct {
	PaperSource  string
	OutDir       string
	SkipDownload bool
	PerClass     int
	MaxTotal     int
}

// Result is the state accumulated across a pipeline run
type Result struct {
	Paper      *domain.PaperDocument
	Mentions   []domain.DatasetMention
	Matches    []domain.CatalogMatch
	Selection  *domain.SelectionResult
	DatasetDir string
	SampleDir  string
	Profile    *domain.ImageProfile
	MethodSpec *domain.MethodSpec
	Issues     []string
}

// Pipeline wires the services run in sequence
type Pipeline struct {
	loader   PaperLoader
	mentions *usecase.MentionService
	resolver *usecase.ResolverService
	selector *usecase.SelectorService
	methods  *usecase.MethodsService
	catalog  domain.CatalogClient
}

// New creates a pipeline from its collaborating services
func New(loader PaperLoader, mentions *usecase.MentionService, resolver *usecase.ResolverService,
	selector *usecase.SelectorService, methods *usecase.MethodsService, catalog domain.CatalogClient) *Pipeline {
	return &Pipeline{
		loader:   loader,
		mentions: mentions,
		resolver: resolver,
		selector: selector,
		methods:  methods,
		catalog:  catalog,
	}
}

func step(title string) {
	log.Printf("[PIPELINE] === %s ===", title)
}

// Run executes the full pipeline. The terminal non-fatal stops (no dataset
// mentions found, no catalog matches) are reported via ErrNoMentions and
// ErrNoMatches with a partially filled Result; the caller decides how to
// surface them.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	out := opts.OutDir

	// A. Load paper
	step("A. Load paper")
	paper, err := p.loader.Load(ctx, opts.PaperSource)
	if err != nil {
		return res, fmt.Errorf("failed to load paper: %w", err)
	}
	res.Paper = paper

	// B. Extract dataset mentions
	step("B. Extract dataset mentions")
	mentions, err := p.mentions.ExtractMentions(ctx, paper.Text)
	if err != nil {
		return res, err
	}
	res.Mentions = mentions
	if err := writeJSON(out, "candidates.json", mentions); err != nil {
		return res, err
	}
	if len(mentions) == 0 {
		return p.stop(res, out, domain.ErrNoMentions)
	}

	// C. Probe catalog matches
	step("C. Probe catalog")
	matches, err := p.resolver.ProbeMatches(ctx, mentions)
	if err != nil {
		return res, err
	}
	res.Matches = matches
	if err := writeJSON(out, "resolver_matches.json", matches); err != nil {
		return res, err
	}
	if len(matches) == 0 {
		return p.stop(res, out, domain.ErrNoMatches)
	}

	// D. Select one winner with transparent rationale
	step("D. Select match")
	primary := usecase.PrimaryName(mentions)
	winner, rationale := p.selector.ChooseBestMatch(matches, primary)

	alternatives := matches
	if len(alternatives) > alternativesLimit {
		alternatives = alternatives[:alternativesLimit]
	}
	res.Selection = &domain.SelectionResult{
		Winner:       winner,
		Rationale:    rationale,
		Alternatives: alternatives,
	}
	if err := writeJSON(out, "selection.json", res.Selection); err != nil {
		return res, err
	}
	if winner == nil {
		// cannot happen for a non-empty match list; see selector contract
		return p.stop(res, out, domain.ErrNoWinner)
	}

	modality := dataset.GuessModality(winner.Files)
	log.Printf("[PIPELINE] Chosen: %s | Title: %s | Modality: %s", winner.Ref, winner.Title, modality)
	if winner.URL != "" {
		log.Printf("[PIPELINE] Dataset URL: %s", winner.URL)
	}

	// E. Download only the chosen dataset
	step("E. Download dataset")
	dsDir := filepath.Join(out, "dataset_"+strings.ReplaceAll(winner.Ref, "/", "_"))
	res.DatasetDir = dsDir
	switch {
	case opts.SkipDownload:
		log.Printf("[PIPELINE] Download skipped by request")
		return res, nil
	case dirNonEmpty(dsDir):
		log.Printf("[PIPELINE] Cache hit: %s already exists, skipping download", dsDir)
	default:
		if err := p.catalog.DownloadDataset(ctx, winner.Ref, dsDir); err != nil {
			return res, fmt.Errorf("failed to download %s: %w", winner.Ref, err)
		}
	}
	log.Printf("[PIPELINE] Dataset dir: %s", dsDir)

	// F-H. Sample, profile and EDA
	step("F-H. Sample, profile & EDA")
	sample, err := dataset.SampleImages(dsDir, out, opts.PerClass, opts.MaxTotal)
	if err != nil {
		return res, fmt.Errorf("failed to sample dataset: %w", err)
	}
	res.SampleDir = sample.SampleDir

	profile, err := dataset.ProfileImages(sample.SampleDir)
	if err != nil {
		return res, fmt.Errorf("failed to profile sample: %w", err)
	}
	res.Profile = profile

	edaDir := filepath.Join(out, "eda")
	if err := eda.SaveClassBarChart(sample.PerClass, filepath.Join(edaDir, "class_counts.png")); err != nil {
		return res, fmt.Errorf("failed to render class chart: %w", err)
	}
	if err := eda.SaveSampleGrid(sample.SampleDir, filepath.Join(edaDir, "sample_grid.png"), sampleGridSize); err != nil {
		return res, fmt.Errorf("failed to render sample grid: %w", err)
	}
	log.Printf("[PIPELINE] Classes (sample): %d | Broken files skipped: %d", len(sample.PerClass), sample.Broken)

	// I. Dataset card
	title := winner.Title
	if title == "" {
		title = winner.Ref
	}
	if err := scaffold.WriteImageDatasetCard(filepath.Join(out, "dataset_card.md"),
		title, winner.URL, winner.License, profile); err != nil {
		return res, err
	}

	// J. Extract methods
	step("J. Extract methods")
	spec := p.methods.ExtractMethods(ctx, paper.Text)
	res.MethodSpec = &spec
	if err := writeJSON(out, "method_spec.json", spec); err != nil {
		return res, err
	}

	// K. Render code scaffold
	step("K. Render code scaffold")
	codePaths, err := scaffold.RenderCodeTemplates(spec, out)
	if err != nil {
		return res, fmt.Errorf("failed to render scaffold: %w", err)
	}

	// L. Compose paper-to-code wiki
	step("L. Compose paper->code wiki")
	if err := scaffold.ComposeWiki(spec, codePaths, filepath.Join(out, "paper_to_code_wiki.md")); err != nil {
		return res, err
	}

	log.Printf("[PIPELINE] Artifacts written to %s", out)
	return res, nil
}

// stop records a terminal non-fatal condition and halts the run
func (p *Pipeline) stop(res *Result, out string, cause error) (*Result, error) {
	res.Issues = append(res.Issues, cause.Error())
	if err := writeText(out, "report.txt", cause.Error()); err != nil {
		log.Printf("[PIPELINE] Could not write report: %v", err)
	}
	return res, cause
}
