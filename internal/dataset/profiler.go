package dataset

import (
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/corona10/goimagehash"

	"github.com/paperforge/paperforge/internal/domain"
)

// ProfileImages computes simple statistics over a sampled image directory:
// total count, per-class counts, and an approximate duplicate rate from
// perceptual-hash buckets. Expects the layout sampleDir/<class>/*.png.
func ProfileImages(sampleDir string) (*domain.ImageProfile, error) {
	entries, err := os.ReadDir(sampleDir)
	if err != nil {
		return nil, err
	}

	perClass := make(map[string]int)
	hashes := make(map[string]int)
	total := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		clsDir := filepath.Join(sampleDir, entry.Name())

		count := 0
		filepath.WalkDir(clsDir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			count++

			if h, err := hashImage(path); err == nil {
				hashes[h]++
			} else {
				log.Printf("[PROFILE] Could not hash %s: %v", path, err)
			}
			return nil
		})

		perClass[entry.Name()] = count
		total += count
	}

	dups := 0
	for _, n := range hashes {
		if n > 1 {
			dups += n - 1
		}
	}

	dupRate := 0.0
	if total > 0 {
		dupRate = float64(dups) / float64(total)
	}

	return &domain.ImageProfile{
		Modality:            string(ModalityImages),
		TotalImages:         total,
		PerClass:            perClass,
		ApproxDuplicateRate: dupRate,
	}, nil
}

// hashImage computes the perceptual hash of an image file
func hashImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", err
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", err
	}
	return hash.ToString(), nil
}
