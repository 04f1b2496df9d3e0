package domain

// DatasetMention represents a candidate dataset reference extracted from paper text.
// Name or URL may be empty when the extractor found only one of the two.
type DatasetMention struct {
	Name           string  `json:"name,omitempty"`
	URL            string  `json:"url_if_any,omitempty"`
	ContextSnippet string  `json:"context_snippet"`
	Confidence     float64 `json:"confidence"`
}

// DatasetFile represents a single file inside a catalog dataset
type DatasetFile struct {
	Name       string `json:"name"`
	TotalBytes int64  `json:"totalBytes"`
	Type       string `json:"type,omitempty"`
}

// CatalogHit is one raw result from a catalog dataset search, before scoring
type CatalogHit struct {
	Ref        string `json:"ref"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	License    string `json:"license,omitempty"`
	TotalBytes int64  `json:"totalBytes,omitempty"`
}

// CatalogMatch is one scored, enriched candidate dataset for a paper mention.
// Ref values are unique across the full match list of a probe run.
type CatalogMatch struct {
	PaperName   string        `json:"paper_name"`
	Ref         string        `json:"ref"`
	Title       string        `json:"title"`
	URL         string        `json:"url,omitempty"`
	License     string        `json:"license,omitempty"`
	Score       float64       `json:"score"`
	TotalSizeMB *float64      `json:"total_mb"`
	Files       []DatasetFile `json:"files"`
}

// SelectionResult pairs the chosen match with the ordered audit trail of
// selection decisions. Winner is nil when no match survived.
type SelectionResult struct {
	Winner       *CatalogMatch  `json:"winner"`
	Rationale    []string       `json:"rationale"`
	Alternatives []CatalogMatch `json:"alternatives"`
}

// ImageProfile summarizes a sampled image dataset
type ImageProfile struct {
	Modality            string         `json:"modality"`
	TotalImages         int            `json:"total_images"`
	PerClass            map[string]int `json:"per_class"`
	ApproxDuplicateRate float64        `json:"approx_duplicate_rate"`
}
