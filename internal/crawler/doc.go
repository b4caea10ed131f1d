// Package crawler downloads the observatory's yearly tide table, extracts one
// station's records and writes them out as the detailed CSV, the mean-sea-level
// CSV and a metadata JSON document.
package crawler
