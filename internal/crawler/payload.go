package crawler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/JakeFAU/sealevel/internal/sealevel"
)

var (
	// ErrStationNotFound is returned when the payload has no entry for the requested station code.
	ErrStationNotFound = errors.New("station not found")
	// ErrMalformedPayload is returned when the payload is not the expected tide document.
	ErrMalformedPayload = errors.New("malformed tide payload")
)

// missingCell is the observatory's placeholder for an unpublished value.
const missingCell = "***"

// rowWidth is year plus the five water levels.
const rowWidth = 6

type tidePayload struct {
	Tide *struct {
		Data []stationPayload `json:"data"`
	} `json:"tide"`
}

type stationPayload struct {
	Code     string              `json:"code"`
	YearData [][]json.RawMessage `json:"yearData"`
}

func decodePayload(body []byte) (tidePayload, error) {
	var p tidePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return tidePayload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if p.Tide == nil {
		return tidePayload{}, fmt.Errorf("%w: missing tide object", ErrMalformedPayload)
	}
	return p, nil
}

func (p tidePayload) station(code string) (stationPayload, bool) {
	for _, st := range p.Tide.Data {
		if st.Code == code {
			return st, true
		}
	}
	return stationPayload{}, false
}

// ParsePayload extracts the yearly records of stationCode from a tide document,
// sorted by year. "***" and empty cells become missing levels.
func ParsePayload(body []byte, stationCode string) ([]sealevel.Record, error) {
	p, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	st, ok := p.station(stationCode)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStationNotFound, stationCode)
	}
	return parseStation(st)
}

func parseStation(st stationPayload) ([]sealevel.Record, error) {
	records := make([]sealevel.Record, 0, len(st.YearData))
	for i, row := range st.YearData {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedPayload, i, err)
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Year < records[j].Year })
	return records, nil
}

func parseRow(row []json.RawMessage) (sealevel.Record, error) {
	if len(row) < rowWidth {
		return sealevel.Record{}, fmt.Errorf("want %d cells, got %d", rowWidth, len(row))
	}
	year, err := parseCell(row[0])
	if err != nil {
		return sealevel.Record{}, fmt.Errorf("year: %w", err)
	}
	if year == nil || *year != math.Trunc(*year) {
		return sealevel.Record{}, fmt.Errorf("year %s is not an integer", row[0])
	}

	var levels [rowWidth - 1]*float64
	for i := range levels {
		levels[i], err = parseCell(row[i+1])
		if err != nil {
			return sealevel.Record{}, fmt.Errorf("%s: %w", sealevel.Columns[i+1], err)
		}
	}
	return sealevel.Record{
		Year:                int(*year),
		MeanSeaLevel:        levels[0],
		MeanHigherHighWater: levels[1],
		MeanLowerHighWater:  levels[2],
		MeanHigherLowWater:  levels[3],
		MeanLowerLowWater:   levels[4],
	}, nil
}

// parseCell accepts a JSON string or number. nil means missing.
func parseCell(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode cell: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" || s == missingCell {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		return &v, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode cell %s: %w", raw, err)
	}
	return &v, nil
}
