package sealevel

import (
	"fmt"
	"time"
)

// TimestampLayout is the suffix format shared by every artifact.
const TimestampLayout = "20060102_150405"

// DatasetPattern matches detailed dataset files written by the crawler.
const DatasetPattern = "HKO_QUB_SeaLevel_Data_*.csv"

// Artifact name prefixes.
const (
	PrefixDataset       = "HKO_QUB_SeaLevel_Data"
	PrefixSimpleDataset = "HKO_QUB_MeanSeaLevel_Simple"
	PrefixMetadata      = "HKO_QUB_SeaLevel_Metadata"
	PrefixComprehensive = "HKO_Comprehensive_SeaLevel_Analysis"
	PrefixTidal         = "HKO_Detailed_Tidal_Analysis"
	PrefixReport        = "HKO_SeaLevel_Analysis_Report"
	PrefixAnimation     = "HKO_QUB_SeaLevel_Animation"
)

// Content types used when writing artifacts.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeJSON = "application/json"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Timestamp formats t as an artifact suffix.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ArtifactName builds "<prefix>_<timestamp>.<ext>".
func ArtifactName(prefix string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, Timestamp(t), ext)
}
