// Package cmd defines and implements the CLI commands for the sealevel executable.
//
// Architecture overview:
//   - crawl: the Colly-based fetcher downloads the HKO yearly tide table once, internal/crawler extracts the
//     configured station and writes the detailed CSV, the simple CSV and the metadata JSON to the BlobStore
//     (local data.dir, memory, or local mirrored to GCS). A compact Pub/Sub notification is published when a
//     topic is configured.
//   - animate: internal/animator reads the newest dataset, places one point per year on a polar chart under the
//     selected radius policy and renders every frame into an animated GIF.
//   - analyze: internal/analysis computes trends, decadal statistics and tidal correlations with gonum, draws
//     the figures with go-chart and writes a text report.
//   - serve: internal/api exposes the same computations as JSON over chi, with health, readiness and
//     Prometheus endpoints.
//
// Configuration comes from an optional YAML file (--config) and SEALEVEL_* environment variables; zap
// provides structured logging. Missing or empty datasets are logged and the
// command exits zero.
package cmd
