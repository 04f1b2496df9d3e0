package scaffold

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/paperforge/paperforge/internal/domain"
)

// ComposeWiki writes the paper-to-code wiki markdown linking the extracted
// method spec to the generated code artifacts.
func ComposeWiki(spec domain.MethodSpec, codePaths map[string]string, outPath string) error {
	var b strings.Builder

	b.WriteString("# Paper → Code Wiki\n\n")

	b.WriteString("## Dataset\n")
	fmt.Fprintf(&b, "- Name: %s\n", spec.Dataset.Name)
	fmt.Fprintf(&b, "- Num classes: %d\n", spec.Dataset.NumClasses)
	fmt.Fprintf(&b, "- Input size (C,H,W): %v\n\n", spec.Dataset.InputSize)

	b.WriteString("## Preprocessing\n")
	fmt.Fprintf(&b, "- Normalize: mean=%v std=%v\n",
		spec.Preprocess.Normalize.Mean, spec.Preprocess.Normalize.Std)
	fmt.Fprintf(&b, "- Augment: crop=%v padding=%d flip=%v cutout=%v\n\n",
		spec.Preprocess.Augment.RandomCrop, spec.Preprocess.Augment.Padding,
		spec.Preprocess.Augment.RandomFlip, spec.Preprocess.Augment.Cutout)

	b.WriteString("## Model\n")
	fmt.Fprintf(&b, "- Family: %s depth=%d widen_factor=%d dropout=%g\n\n",
		spec.Model.Family, spec.Model.Depth, spec.Model.WidenFactor, spec.Model.Dropout)

	b.WriteString("## Training\n")
	fmt.Fprintf(&b, "- Optimizer: %s lr=%g momentum=%g weight_decay=%g\n",
		spec.Train.Optimizer, spec.Train.LR, spec.Train.Momentum, spec.Train.WeightDecay)
	fmt.Fprintf(&b, "- Scheduler: %s epochs=%d batch_size=%d\n\n",
		spec.Train.Scheduler, spec.Train.Epochs, spec.Train.BatchSize)

	b.WriteString("## Generated Code Artifacts\n")
	rels := make([]string, 0, len(codePaths))
	for rel := range codePaths {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		fmt.Fprintf(&b, "- `%s` → `%s`\n", rel, codePaths[rel])
	}
	b.WriteString("\n")

	if len(spec.Citations) > 0 {
		b.WriteString("## Citations (paper excerpts supporting decisions)\n")
		cits := spec.Citations
		if len(cits) > 10 {
			cits = cits[:10]
		}
		for _, c := range cits {
			section := c.Section
			if section == "" {
				section = "(unknown)"
			}
			fmt.Fprintf(&b, "- **%s**: %q\n", section, strings.TrimSpace(c.Quote))
		}
		b.WriteString("\n")
	}

	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}

// WriteImageDatasetCard writes a dataset card summarizing the chosen
// dataset and its sampled image profile.
func WriteImageDatasetCard(outPath, title, url, license string, profile *domain.ImageProfile) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Dataset Card: %s\n", title)
	if url != "" {
		fmt.Fprintf(&b, "- Kaggle: %s\n", url)
	}
	if license == "" {
		license = "Unknown"
	}
	fmt.Fprintf(&b, "- License: %s\n\n", license)

	b.WriteString("## Image Sample Profile\n")
	fmt.Fprintf(&b, "- Total images (sample): %d\n", profile.TotalImages)
	b.WriteString("### Per-class (sample)\n")
	classes := make([]string, 0, len(profile.PerClass))
	for cls := range profile.PerClass {
		classes = append(classes, cls)
	}
	sort.Strings(classes)
	for _, cls := range classes {
		fmt.Fprintf(&b, "- %s: %d\n", cls, profile.PerClass[cls])
	}
	fmt.Fprintf(&b, "- Approx duplicate rate (phash): %.3f\n\n", profile.ApproxDuplicateRate)

	b.WriteString("## Quick EDA\n")
	b.WriteString("- See `eda/class_counts.png` and `eda/sample_grid.png`.\n")

	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}
