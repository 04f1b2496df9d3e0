package dataset

import (
	"fmt"
	"image"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// samplerSeed keeps samples stable across runs of the same dataset
const samplerSeed = 42

// SampleResult describes what a sampling pass produced
type SampleResult struct {
	SampleDir string
	PerClass  map[string]int
	Broken    int
}

// SampleImages samples images from a downloaded dataset into
// outDir/images_sample/<class>/, dispatching to the CIFAR batch decoder or
// the class-folder sampler depending on the dataset layout.
func SampleImages(datasetDir, outDir string, perClass, maxTotal int) (*SampleResult, error) {
	if hasCIFARBatches(datasetDir) {
		return sampleCIFARBatches(datasetDir, outDir, perClass, maxTotal)
	}
	return sampleFromFolders(datasetDir, outDir, perClass, maxTotal)
}

// sampleFromFolders samples from a class-per-directory layout, checking
// image integrity and capping per class and in total.
func sampleFromFolders(datasetDir, outDir string, perClass, maxTotal int) (*SampleResult, error) {
	sampleDir := filepath.Join(outDir, "images_sample")
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sample dir: %w", err)
	}

	classes := scanClassDirs(datasetDir)
	result := &SampleResult{
		SampleDir: sampleDir,
		PerClass:  make(map[string]int),
	}
	rng := rand.New(rand.NewSource(samplerSeed))
	total := 0

	// Deterministic class order so the per-class counts are reproducible
	classNames := make([]string, 0, len(classes))
	for name := range classes {
		classNames = append(classNames, name)
	}
	sort.Strings(classNames)

	for _, cls := range classNames {
		paths := classes[cls]
		good := paths[:0]
		for _, p := range paths {
			if imageIntegrityOK(p) {
				good = append(good, p)
			} else {
				result.Broken++
			}
		}
		if len(good) == 0 {
			continue
		}

		rng.Shuffle(len(good), func(i, j int) { good[i], good[j] = good[j], good[i] })

		take := perClass
		if take > len(good) {
			take = len(good)
		}

		destCls := filepath.Join(sampleDir, strings.ReplaceAll(cls, "/", "_"))
		if err := os.MkdirAll(destCls, 0o755); err != nil {
			return nil, err
		}

		copied := 0
		for _, p := range good[:take] {
			if total >= maxTotal {
				break
			}
			if err := copyFile(p, filepath.Join(destCls, filepath.Base(p))); err != nil {
				log.Printf("[SAMPLE] Could not copy %s: %v", p, err)
				continue
			}
			copied++
			total++
		}
		result.PerClass[cls] = copied

		if total >= maxTotal {
			break
		}
	}

	return result, nil
}

// scanClassDirs finds class directories under the usual train/test/val
// roots, falling back to the dataset root itself.
func scanClassDirs(root string) map[string][]string {
	var candRoots []string
	splitRoots := make(map[string]bool)
	for _, name := range []string{"train", "training", "Train", "test", "val", "validation", "Test", "Val"} {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			candRoots = append(candRoots, dir)
			splitRoots[dir] = true
		}
	}
	candRoots = append(candRoots, root)

	classes := make(map[string][]string)
	for _, base := range candRoots {
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			clsDir := filepath.Join(base, entry.Name())
			// Split roots already contributed their subdirectories
			if base == root && splitRoots[clsDir] {
				continue
			}
			images := collectImages(clsDir)
			if len(images) == 0 {
				continue
			}
			key := entry.Name()
			if base != root {
				key = filepath.Base(base) + "/" + entry.Name()
			}
			if _, seen := classes[key]; !seen {
				classes[key] = images
			}
		}
	}
	return classes
}

// collectImages recursively lists image files under dir
func collectImages(dir string) []string {
	var images []string
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if isImageFile(path) {
			images = append(images, path)
		}
		return nil
	})
	return images
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// imageIntegrityOK verifies a file decodes as an image
func imageIntegrityOK(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.Decode(f)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
