package domain

// PaperDocument holds the text extracted from a research paper
type PaperDocument struct {
	Source    string   `json:"source"`
	Text      string   `json:"text"`
	Titles    []string `json:"titles,omitempty"`
	Narrative []string `json:"narrative,omitempty"`
}
