package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/collapse/internal/collapse"
)

type ExportData struct {
	ID     string           `json:"id,omitempty"`
	Params collapse.Params  `json:"params"`
	Steps  int              `json:"steps"`
	Series *collapse.Series `json:"series"`
}

// ExportJSON writes params and the full series as indented JSON.
func ExportJSON(w io.Writer, id string, p collapse.Params, series *collapse.Series) error {
	data := ExportData{
		ID:     id,
		Params: p,
		Steps:  series.Len(),
		Series: series,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
