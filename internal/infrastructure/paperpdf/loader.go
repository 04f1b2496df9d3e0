package paperpdf

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/paperforge/paperforge/internal/domain"
)

// Loader extracts plain text from research paper PDFs, given either a local
// file path or an HTTP(S) URL.
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a new paper loader
func NewLoader() *Loader {
	return &Loader{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Load returns the paper text for a local path or URL
func (l *Loader) Load(ctx context.Context, source string) (*domain.PaperDocument, error) {
	path := source
	if isURL(source) {
		downloaded, cleanup, err := l.download(ctx, source)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		path = downloaded
	}

	text, err := extractText(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", source, err)
	}

	titles, narrative := splitSections(text)

	return &domain.PaperDocument{
		Source:    source,
		Text:      text,
		Titles:    titles,
		Narrative: narrative,
	}, nil
}

// isURL reports whether the source looks like an HTTP(S) URL
func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// download fetches a remote PDF into a temp file
func (l *Loader) download(ctx context.Context, url string) (string, func(), error) {
	log.Printf("[PAPER] Downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to download paper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("failed to download paper: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "paperforge-paper-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = io.Copy(tmp, resp.Body)
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("failed to save paper: %w", err)
	}

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// extractText pulls the plain text out of a PDF file
func extractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	body, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(&sb, body); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// splitSections makes a rough title/narrative split: short lines without a
// trailing period are treated as headings. This is a heuristic; downstream
// consumers only use it as a hint.
func splitSections(text string) ([]string, []string) {
	var titles, narrative []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if looksLikeHeading(line) {
			titles = append(titles, line)
		} else {
			narrative = append(narrative, line)
		}
	}
	return titles, narrative
}

func looksLikeHeading(line string) bool {
	if len(line) > 80 || strings.HasSuffix(line, ".") {
		return false
	}
	words := strings.Fields(line)
	return len(words) > 0 && len(words) <= 10
}
