package analysis

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ReportInfo identifies the station and the moment a report was generated.
type ReportInfo struct {
	StationName string
	StationCode string
	GeneratedAt time.Time
}

// reportNote is wrapped at the same points the observatory uses.
var reportNote = []string{
	"Note: Tidal information from 1954 to 1985 are based on North Point tide gauge data.",
	"Mean Sea Levels are computed directly from on-site measurement data without",
	"any post data corrections including land settlement.",
}

// WriteReport renders s as the plain-text analysis report.
func WriteReport(w io.Writer, s Summary, info ReportInfo) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	rule := func(title string, width int) {
		line("%s", title)
		line("%s", strings.Repeat("-", width))
	}

	line("Hong Kong Observatory - %s Station Sea Level Analysis Report", info.StationName)
	line("%s", strings.Repeat("=", 70))
	line("")
	line("Report Generated: %s", info.GeneratedAt.Format(time.DateTime))
	line("Data Period: %s (%d years)", s.Period.Label(), s.Period.Records)
	line("Station: %s (%s)", info.StationName, info.StationCode)
	line("")

	rule("BASIC STATISTICS", 20)
	line("Mean Sea Level Average: %.3f m", s.Basic.Mean)
	line("Standard Deviation: %.3f m", s.Basic.StdDev)
	line("Maximum: %.3f m (Year: %d)", s.Basic.Max, s.Basic.MaxYear)
	line("Minimum: %.3f m (Year: %d)", s.Basic.Min, s.Basic.MinYear)
	line("Range: %.3f m", s.Basic.Range)
	line("")

	rule("TREND ANALYSIS", 20)
	line("Linear trend slope: %.6f m/year", s.LongTerm.Slope)
	line("Rate of change: %.2f cm/decade", s.LongTerm.PerDecade())
	line("Total change over %d years: %.2f cm", s.Period.Records, s.LongTerm.Slope*float64(s.Period.Records))
	line("")

	rows := s.RecentLevels.Rows
	window := fmt.Sprintf("since %d", s.Options.ReportFrom)
	if len(rows) > 0 {
		window = fmt.Sprintf("%d-%d", rows[0].Year, rows[len(rows)-1].Year)
	}
	rule(fmt.Sprintf("RECENT CHANGES (%s)", window), 30)
	for _, r := range rows {
		line("%d: %.3f m", r.Year, r.Value)
	}
	if s.RecentLevels.ChangeCm != nil {
		line("")
		line("Change %s: %.1f cm", window, *s.RecentLevels.ChangeCm)
	}
	line("")

	rule("DECADAL AVERAGES", 20)
	for _, d := range s.Decades {
		line("%s: %.3f ± %.3f m (%d years)", d.Label(), d.Mean, d.StdDev, d.Count)
	}
	line("")

	rule("DATA QUALITY", 15)
	line("Total records: %d", s.Quality.TotalRecords)
	line("Complete tidal data: %d years", s.Quality.CompleteTidal)
	line("Data completeness: %.1f%%", s.Quality.Completeness)
	line("Missing years: %d", s.Quality.MissingYears)
	line("")

	for _, l := range reportNote {
		line("%s", l)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// panelText is the statistical summary shown in the last panel of the
// comprehensive figure.
func panelText(s Summary) []string {
	lines := []string{
		"Data Summary Statistics:",
		"",
		fmt.Sprintf("Time Period: %s (%d years)", s.Period.Label(), s.Period.Records),
		"",
		"Mean Sea Level:",
		fmt.Sprintf("- Average: %.3f m", s.Basic.Mean),
		fmt.Sprintf("- Std Dev: %.3f m", s.Basic.StdDev),
		fmt.Sprintf("- Maximum: %.3f m (%d)", s.Basic.Max, s.Basic.MaxYear),
		fmt.Sprintf("- Minimum: %.3f m (%d)", s.Basic.Min, s.Basic.MinYear),
		"",
		"Long-term Trend:",
		fmt.Sprintf("- Total change: %.2f cm (%d years)", s.LongTerm.Slope*float64(s.Period.Span()), s.Period.Span()),
		fmt.Sprintf("- Rate: %.2f cm/decade", s.LongTerm.PerDecade()),
	}
	if rows := s.RecentLevels.Rows; len(rows) > 0 {
		first, last := rows[0], rows[len(rows)-1]
		lines = append(lines, "", "Recent Changes:",
			fmt.Sprintf("- %d: %.3f m", first.Year, first.Value),
			fmt.Sprintf("- %d: %.3f m", last.Year, last.Value),
		)
		if s.RecentLevels.ChangeCm != nil {
			lines = append(lines, fmt.Sprintf("- %d-year change: %.1f cm", last.Year-first.Year, *s.RecentLevels.ChangeCm))
		}
	}
	lines = append(lines, "",
		"Data Quality:",
		fmt.Sprintf("- Complete tide data: %d years", s.Quality.CompleteTidal),
		fmt.Sprintf("- Data coverage: %.1f%%", s.Quality.Completeness),
	)
	return lines
}
