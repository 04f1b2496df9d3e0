// Package eda renders quick exploratory charts for a sampled dataset.
package eda

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	_ "image/jpeg"

	"github.com/nfnt/resize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// gridCell is the pixel size of one tile in the sample grid
const gridCell = 96

// gridSeed keeps tile selection stable run-to-run
const gridSeed = 42

// SaveClassBarChart renders a bar chart of per-class sample counts.
// Classes are sorted by name so the chart is stable across runs. An empty
// map renders nothing and is not an error.
func SaveClassBarChart(perClass map[string]int, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if len(perClass) == 0 {
		return nil
	}

	labels := make([]string, 0, len(perClass))
	for k := range perClass {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	values := make(plotter.Values, len(labels))
	for i, label := range labels {
		values[i] = float64(perClass[label])
	}

	p := plot.New()
	p.Title.Text = "Images per class (sample)"
	p.X.Label.Text = "Class"
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(10*vg.Inch, 5*vg.Inch, outPath)
}

// SaveSampleGrid composites a grid of sample thumbnails, selecting images
// round-robin across classes so multiple classes appear. Expects the layout
// sampleDir/<class>/*.png. An empty sample dir renders nothing.
func SaveSampleGrid(sampleDir, outPath string, grid int) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	picked := pickRoundRobin(sampleDir, grid*grid)
	if len(picked) == 0 {
		return nil
	}

	canvas := image.NewRGBA(image.Rect(0, 0, grid*gridCell, grid*gridCell))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, path := range picked {
		img, err := loadImage(path)
		if err != nil {
			continue // unreadable tile stays blank
		}

		thumb := resize.Resize(gridCell, gridCell, img, resize.Lanczos3)
		col, row := i%grid, i/grid
		cell := image.Rect(col*gridCell, row*gridCell, (col+1)*gridCell, (row+1)*gridCell)
		draw.Draw(canvas, cell, thumb, thumb.Bounds().Min, draw.Src)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, canvas)
}

// pickRoundRobin cycles across class folders taking one image at a time
// until n tiles are filled or the classes run out
func pickRoundRobin(sampleDir string, n int) []string {
	entries, err := os.ReadDir(sampleDir)
	if err != nil {
		return nil
	}

	rng := rand.New(rand.NewSource(gridSeed))
	var perClass [][]string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		imgs := listImages(filepath.Join(sampleDir, entry.Name()))
		if len(imgs) == 0 {
			continue
		}
		sort.Strings(imgs)
		rng.Shuffle(len(imgs), func(i, j int) { imgs[i], imgs[j] = imgs[j], imgs[i] })
		perClass = append(perClass, imgs)
	}
	if len(perClass) == 0 {
		return nil
	}

	var picked []string
	idxs := make([]int, len(perClass))
	exhausted := 0
	for k := 0; len(picked) < n && exhausted < len(perClass); k++ {
		cls := k % len(perClass)
		if idxs[cls] >= len(perClass[cls]) {
			if idxs[cls] == len(perClass[cls]) {
				idxs[cls]++ // mark counted
				exhausted++
			}
			continue
		}
		picked = append(picked, perClass[cls][idxs[cls]])
		idxs[cls]++
	}
	return picked
}

func listImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var imgs []string
	for _, e := range entries {
		if !e.IsDir() {
			imgs = append(imgs, filepath.Join(dir, e.Name()))
		}
	}
	return imgs
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
