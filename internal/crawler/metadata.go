package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metadata describes where a dataset came from. Field order is the key order
// of the written JSON document.
type Metadata struct {
	DataSource   string `json:"data_source"`
	StationCode  string `json:"station_code"`
	StationName  string `json:"station_name"`
	DataURL      string `json:"data_url"`
	APIEndpoint  string `json:"api_endpoint"`
	DownloadDate string `json:"download_date"`
	Units        string `json:"units"`
	Note         string `json:"note"`
	TotalRecords int    `json:"total_records"`
	YearRange    string `json:"year_range"`
}

// encodeMetadata renders m with two-space indentation, leaving non-ASCII and
// HTML characters unescaped.
func encodeMetadata(m Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
