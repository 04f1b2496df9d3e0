// Package scaffold renders the training-code scaffold, dataset card, and
// paper-to-code wiki from an extracted method spec.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/paperforge/paperforge/internal/domain"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// templateOutputs maps template names to their rendered paths relative to
// the output directory
var templateOutputs = map[string]string{
	"preprocess.py.tmpl":   "code/src/preprocess.py",
	"model.py.tmpl":        "code/src/model.py",
	"train.py.tmpl":        "code/src/train.py",
	"config.yaml.tmpl":     "code/config.yaml",
	"environment.yml.tmpl": "code/environment.yml",
	"README.md.tmpl":       "code/README.md",
	"Makefile.tmpl":        "code/Makefile",
	"dataset_card.md.tmpl": "code/DATASET_CARD_TEMPLATE.md",
}

// RenderCodeTemplates renders all scaffold files from the method spec.
// Returns a map of {relative path: absolute path} for the wiki composer.
func RenderCodeTemplates(spec domain.MethodSpec, outDir string) (map[string]string, error) {
	tmpl, err := template.New("scaffold").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	outputs := make(map[string]string, len(templateOutputs))
	for name, relOut := range templateOutputs {
		path := filepath.Join(outDir, relOut)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}

		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		err = tmpl.ExecuteTemplate(f, name, spec)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", name, err)
		}

		outputs[relOut] = path
	}

	return outputs, nil
}

var templateFuncs = template.FuncMap{
	// pylist renders a Go slice as a Python list literal
	"pylist": func(v interface{}) string {
		switch vals := v.(type) {
		case []int:
			return intList(vals)
		case []float64:
			return floatList(vals)
		}
		return fmt.Sprintf("%v", v)
	},
}

func intList(vals []int) string {
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", v)
	}
	return out + "]"
}

func floatList(vals []float64) string {
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%g", v)
	}
	return out + "]"
}
