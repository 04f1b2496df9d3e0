package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/paperforge/paperforge/internal/domain"
)

// defaultMethodsExcerptChars bounds how much paper text is sent for
// methods extraction.
const defaultMethodsExcerptChars = 100_000

// MethodsConfig holds configuration for the methods service
type MethodsConfig struct {
	ExcerptChars int
}

// MethodsService extracts an implementation plan from a paper's Methods
// section, falling back to CIFAR-10 / Wide-ResNet defaults for anything the
// paper leaves unspecified.
type MethodsService struct {
	extractor    domain.ChatExtractor
	excerptChars int
}

// NewMethodsService creates a new methods service with dependencies.
// extractor may be nil, in which case the defaults are returned as-is.
func NewMethodsService(extractor domain.ChatExtractor, config MethodsConfig) *MethodsService {
	excerpt := config.ExcerptChars
	if excerpt <= 0 {
		excerpt = defaultMethodsExcerptChars
	}
	return &MethodsService{
		extractor:    extractor,
		excerptChars: excerpt,
	}
}

// ExtractMethods extracts a MethodSpec from the paper text. Extraction
// output is merged over the defaults field by field, so an incomplete or
// failed extraction still yields a fully populated spec.
func (s *MethodsService) ExtractMethods(ctx context.Context, paperText string) domain.MethodSpec {
	spec := DefaultMethodSpec()

	if s.extractor == nil {
		return spec
	}

	excerpt := paperText
	if len(excerpt) > s.excerptChars {
		excerpt = excerpt[:s.excerptChars]
	}

	prompt := fmt.Sprintf(
		"From the research paper excerpt below, extract an implementation plan for the Methods section.\n"+
			"Return a strict JSON object with keys dataset, preprocess, model, train, citations.\n"+
			"Where:\n"+
			"- dataset: {name, num_classes, input_size [C,H,W]}\n"+
			"- preprocess.normalize: {mean, std} (3 floats each for RGB)\n"+
			"- preprocess.augment: {random_crop, padding, random_flip, cutout}\n"+
			"- model: {family (e.g., 'wide_resnet'), depth, widen_factor, dropout}\n"+
			"- train: {epochs, batch_size, optimizer, lr, momentum, weight_decay, scheduler}\n"+
			"- citations: array of {section: short label, quote: short supporting snippet}\n"+
			"Add 5-10 concise citations. Prefer Implementation/Experiments sections.\n"+
			"If the paper omits a field, infer reasonable defaults for CIFAR-10/Wide-ResNet.\n"+
			"Be concise; numeric values should be scalars.\n\n"+
			"Paper excerpt:\n%s", excerpt)

	raw, err := s.extractor.ChatJSON(ctx, mentionSystemPrompt, prompt, "methods")
	if err != nil {
		log.Printf("[METHODS] Extraction failed, using defaults: %v", err)
		return spec
	}

	// Unmarshal over the defaults: fields absent from the response keep
	// their default values.
	if err := json.Unmarshal(raw, &spec); err != nil {
		log.Printf("[METHODS] Could not parse extraction, using defaults: %v", err)
		return DefaultMethodSpec()
	}

	return repairMethodSpec(spec)
}

// DefaultMethodSpec returns sensible Wide-ResNet defaults for papers that
// do not fully specify their setup.
func DefaultMethodSpec() domain.MethodSpec {
	return domain.MethodSpec{
		Dataset: domain.DatasetSpec{
			Name:       "CIFAR-10",
			NumClasses: 10,
			InputSize:  []int{3, 32, 32},
		},
		Preprocess: domain.PreprocessSpec{
			Normalize: domain.NormalizeSpec{
				Mean: []float64{0.4914, 0.4822, 0.4465},
				Std:  []float64{0.2470, 0.2435, 0.2616},
			},
			Augment: domain.AugmentSpec{
				RandomCrop: true,
				Padding:    4,
				RandomFlip: true,
				Cutout:     false,
			},
		},
		Model: domain.ModelSpec{
			Family:      "wide_resnet",
			Depth:       28,
			WidenFactor: 10,
			Dropout:     0.3,
		},
		Train: domain.TrainSpec{
			Epochs:      200,
			BatchSize:   128,
			Optimizer:   "sgd",
			LR:          0.1,
			Momentum:    0.9,
			WeightDecay: 5e-4,
			Scheduler:   "cosine",
		},
		Citations: []domain.Citation{},
	}
}

// repairMethodSpec backfills fields an extraction may have blanked out or
// malformed, so downstream templates always have complete input.
func repairMethodSpec(spec domain.MethodSpec) domain.MethodSpec {
	defaults := DefaultMethodSpec()

	if spec.Dataset.Name == "" {
		spec.Dataset.Name = defaults.Dataset.Name
	}
	if spec.Dataset.NumClasses <= 0 {
		spec.Dataset.NumClasses = defaults.Dataset.NumClasses
	}
	if len(spec.Dataset.InputSize) != 3 {
		spec.Dataset.InputSize = defaults.Dataset.InputSize
	}

	if len(spec.Preprocess.Normalize.Mean) != 3 {
		spec.Preprocess.Normalize.Mean = defaults.Preprocess.Normalize.Mean
	}
	if len(spec.Preprocess.Normalize.Std) != 3 {
		spec.Preprocess.Normalize.Std = defaults.Preprocess.Normalize.Std
	}

	if spec.Model.Family == "" {
		spec.Model.Family = defaults.Model.Family
	}
	if spec.Model.Depth <= 0 {
		spec.Model.Depth = defaults.Model.Depth
	}
	if spec.Model.WidenFactor <= 0 {
		spec.Model.WidenFactor = defaults.Model.WidenFactor
	}

	if spec.Train.Epochs <= 0 {
		spec.Train.Epochs = defaults.Train.Epochs
	}
	if spec.Train.BatchSize <= 0 {
		spec.Train.BatchSize = defaults.Train.BatchSize
	}
	if spec.Train.Optimizer == "" {
		spec.Train.Optimizer = defaults.Train.Optimizer
	}
	if spec.Train.LR <= 0 {
		spec.Train.LR = defaults.Train.LR
	}
	if spec.Train.Scheduler == "" {
		spec.Train.Scheduler = defaults.Train.Scheduler
	}

	if spec.Citations == nil {
		spec.Citations = []domain.Citation{}
	}

	return spec
}
