package dataset

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CIFAR binary batch layout: each record is one label byte followed by
// 32x32 red, green, and blue planes.
const (
	cifarImageDim    = 32
	cifarPlaneBytes  = cifarImageDim * cifarImageDim
	cifarRecordBytes = 1 + 3*cifarPlaneBytes
)

// cifar10Labels is the fallback when the dataset ships no meta file
var cifar10Labels = []string{
	"airplane", "automobile", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck",
}

// hasCIFARBatches reports whether the dataset directory contains binary
// CIFAR batch files
func hasCIFARBatches(datasetDir string) bool {
	return len(cifarBatchFiles(datasetDir)) > 0
}

// cifarBatchFiles lists training batches in order, then the test batch
func cifarBatchFiles(datasetDir string) []string {
	var batches []string
	filepath.WalkDir(datasetDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "data_batch_") && strings.HasSuffix(name, ".bin") {
			batches = append(batches, path)
		}
		return nil
	})
	sort.Strings(batches)

	var tests []string
	filepath.WalkDir(datasetDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if d.Name() == "test_batch.bin" {
			tests = append(tests, path)
		}
		return nil
	})
	return append(batches, tests...)
}

// loadCIFARLabelNames reads batches.meta.txt (one label per line), falling
// back to the standard CIFAR-10 labels
func loadCIFARLabelNames(datasetDir string) []string {
	var names []string
	filepath.WalkDir(datasetDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != "batches.meta.txt" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				names = append(names, line)
			}
		}
		return filepath.SkipAll // first meta file wins
	})
	if len(names) == 0 {
		return cifar10Labels
	}
	return names
}

// sampleCIFARBatches decodes binary CIFAR batches into per-class PNG
// samples, capped per class and in total
func sampleCIFARBatches(datasetDir, outDir string, perClass, maxTotal int) (*SampleResult, error) {
	sampleDir := filepath.Join(outDir, "images_sample")
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sample dir: %w", err)
	}

	labelNames := loadCIFARLabelNames(datasetDir)
	result := &SampleResult{
		SampleDir: sampleDir,
		PerClass:  make(map[string]int),
	}
	perLabel := make(map[int]int)
	total := 0

	for _, batchPath := range cifarBatchFiles(datasetDir) {
		if total >= maxTotal {
			break
		}
		if err := sampleCIFARBatch(batchPath, sampleDir, labelNames, perClass, maxTotal, perLabel, result, &total); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func sampleCIFARBatch(batchPath, sampleDir string, labelNames []string, perClass, maxTotal int, perLabel map[int]int, result *SampleResult, total *int) error {
	f, err := os.Open(batchPath)
	if err != nil {
		return fmt.Errorf("failed to open batch %s: %w", batchPath, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	record := make([]byte, cifarRecordBytes)

	for *total < maxTotal {
		if _, err := io.ReadFull(r, record); err != nil {
			if err == io.EOF {
				return nil
			}
			if err == io.ErrUnexpectedEOF {
				// trailing partial record, count it as broken
				result.Broken++
				return nil
			}
			return fmt.Errorf("failed to read batch %s: %w", batchPath, err)
		}

		label := int(record[0])
		if perLabel[label] >= perClass {
			continue
		}

		cls := fmt.Sprintf("class_%d", label)
		if label >= 0 && label < len(labelNames) {
			cls = labelNames[label]
		}

		clsDir := filepath.Join(sampleDir, cls)
		if err := os.MkdirAll(clsDir, 0o755); err != nil {
			return err
		}

		img := cifarRecordToImage(record[1:])
		name := filepath.Join(clsDir, fmt.Sprintf("img_%05d.png", perLabel[label]))
		if err := savePNG(img, name); err != nil {
			result.Broken++
			continue
		}

		perLabel[label]++
		result.PerClass[cls]++
		*total++
	}

	return nil
}

// cifarRecordToImage reassembles the planar RGB record into an image
func cifarRecordToImage(pixels []byte) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, cifarImageDim, cifarImageDim))
	for y := 0; y < cifarImageDim; y++ {
		for x := 0; x < cifarImageDim; x++ {
			i := y*cifarImageDim + x
			img.SetRGBA(x, y, color.RGBA{
				R: pixels[i],
				G: pixels[cifarPlaneBytes+i],
				B: pixels[2*cifarPlaneBytes+i],
				A: 255,
			})
		}
	}
	return img
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
