package kaggle

import (
	"fmt"
	"math"

	"github.com/paperforge/paperforge/internal/domain"
)

// datasetListItem is one entry of the /datasets/list response
type datasetListItem struct {
	Ref         string `json:"ref"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	URL         string `json:"url"`
	LicenseName string `json:"licenseName"`
	TotalBytes  int64  `json:"totalBytes"`
}

// datasetView is the subset of the /datasets/view response we consume
type datasetView struct {
	Ref         string `json:"ref"`
	LicenseName string `json:"licenseName"`
}

// fileListing is the /datasets/list/files response
type fileListing struct {
	DatasetFiles []datasetFile `json:"datasetFiles"`
}

type datasetFile struct {
	Name       string `json:"name"`
	TotalBytes int64  `json:"totalBytes"`
	FileType   string `json:"fileType"`
}

// mapListItem converts a raw list entry to a domain CatalogHit
func mapListItem(item datasetListItem) domain.CatalogHit {
	hitURL := item.URL
	if hitURL == "" && item.Ref != "" {
		hitURL = fmt.Sprintf("https://www.kaggle.com/datasets/%s", item.Ref)
	}

	return domain.CatalogHit{
		Ref:        item.Ref,
		Title:      item.Title,
		URL:        hitURL,
		License:    item.LicenseName,
		TotalBytes: item.TotalBytes,
	}
}

// mapFileListing converts a raw file listing to domain files plus the
// aggregate size in MB, rounded to three decimals
func mapFileListing(listing fileListing) ([]domain.DatasetFile, *float64) {
	files := make([]domain.DatasetFile, 0, len(listing.DatasetFiles))
	var total int64
	for _, f := range listing.DatasetFiles {
		total += f.TotalBytes
		files = append(files, domain.DatasetFile{
			Name:       f.Name,
			TotalBytes: f.TotalBytes,
			Type:       f.FileType,
		})
	}

	mb := math.Round(float64(total)/(1024*1024)*1000) / 1000
	return files, &mb
}
