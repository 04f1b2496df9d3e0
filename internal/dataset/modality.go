// Package dataset provides modality detection, sampling, and profiling for
// downloaded datasets.
package dataset

import (
	"strings"

	"github.com/paperforge/paperforge/internal/domain"
)

// Modality classifies what kind of data a dataset holds
type Modality string

const (
	ModalityTabular Modality = "tabular"
	ModalityImages  Modality = "images"
	ModalityUnknown Modality = "unknown"
)

// GuessModality infers a dataset's modality from its catalog file names
func GuessModality(files []domain.DatasetFile) Modality {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.ToLower(f.Name))
	}

	for _, n := range names {
		if strings.HasSuffix(n, ".csv") || strings.HasSuffix(n, ".parquet") {
			return ModalityTabular
		}
	}

	for _, n := range names {
		// CIFAR mirrors often expose batch files rather than image files
		if strings.HasPrefix(n, "data_batch_") || n == "test_batch" {
			return ModalityImages
		}
		if strings.HasSuffix(n, ".png") || strings.HasSuffix(n, ".jpg") || strings.HasSuffix(n, ".jpeg") {
			return ModalityImages
		}
		if strings.Contains(n, "train/") || strings.Contains(n, "test/") {
			return ModalityImages
		}
	}

	return ModalityUnknown
}
