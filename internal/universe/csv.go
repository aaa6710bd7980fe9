// Package universe loads the instrument universe from a spreadsheet export
package universe

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
)

// CSVSource reads instrument rows from a CSV export of the universe
// spreadsheet. Headers are matched fuzzily (the sheet is maintained by
// hand, in more than one language), and rows missing a ticker are
// skipped. Currency defaults to EUR and quantity to 1.
type CSVSource struct {
	path   string
	logger *common.Logger
}

// NewCSVSource creates a universe source reading from path.
func NewCSVSource(path string, logger *common.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger,
	}
}

// Load reads and parses the universe file.
func (s *CSVSource) Load(ctx context.Context) ([]models.Instrument, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file %s: %w", s.path, err)
	}
	defer f.Close()

	return s.parse(f)
}

// columnIndex maps fuzzy header names onto column positions.
type columnIndex struct {
	ticker   int
	name     int
	currency int
	quantity int
	avgCost  int
	weight   int
	geo      int
}

func (s *CSVSource) parse(r io.Reader) ([]models.Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // hand-maintained sheets have ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read universe header: %w", err)
	}

	cols := matchColumns(header)
	if cols.ticker < 0 {
		return nil, fmt.Errorf("universe file has no ticker column (headers: %s)", strings.Join(header, ", "))
	}

	var instruments []models.Instrument
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.Warn().Int("line", line).Err(err).Msg("Skipping malformed universe row")
			continue
		}

		inst, ok := s.parseRow(row, cols)
		if !ok {
			continue
		}
		instruments = append(instruments, inst)
	}

	s.logger.Info().Int("instruments", len(instruments)).Str("path", s.path).Msg("Universe loaded")
	return instruments, nil
}

// matchColumns finds each field's column by fuzzy header matching.
func matchColumns(header []string) columnIndex {
	cols := columnIndex{ticker: -1, name: -1, currency: -1, quantity: -1, avgCost: -1, weight: -1, geo: -1}

	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(key, "ticker"):
			cols.ticker = i
		case strings.Contains(key, "name") || strings.Contains(key, "nom"):
			cols.name = i
		case strings.Contains(key, "curr") || strings.Contains(key, "devise"):
			cols.currency = i
		case strings.Contains(key, "qty") || strings.Contains(key, "quant"):
			cols.quantity = i
		case strings.Contains(key, "cost") || strings.Contains(key, "pru"):
			cols.avgCost = i
		case strings.Contains(key, "target") || strings.Contains(key, "cible"):
			cols.weight = i
		case strings.Contains(key, "geo") || strings.Contains(key, "poids"):
			cols.geo = i
		}
	}

	return cols
}

func (s *CSVSource) parseRow(row []string, cols columnIndex) (models.Instrument, bool) {
	ticker := strings.TrimSpace(field(row, cols.ticker))
	if ticker == "" {
		return models.Instrument{}, false
	}

	inst := models.Instrument{
		Ticker:   ticker,
		Name:     strings.TrimSpace(field(row, cols.name)),
		Currency: strings.ToUpper(strings.TrimSpace(field(row, cols.currency))),
		Quantity: parseNumber(field(row, cols.quantity)),
	}

	if inst.Currency == "" {
		inst.Currency = "EUR"
	}
	if inst.Quantity == 0 {
		inst.Quantity = 1
	}
	if inst.Name == "" {
		inst.Name = ticker
	}

	inst.AvgCost = parseNumber(field(row, cols.avgCost))
	inst.TargetWeight = parseNumber(field(row, cols.weight))

	if geo := strings.TrimSpace(field(row, cols.geo)); strings.Contains(geo, "{") {
		inst.GeoWeights = parseGeoWeights(geo)
	}

	return inst, true
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseNumber tolerates European decimal commas and thousands noise.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseGeoWeights decodes the JSON-in-cell geographic weights. Sheets
// tend to hold single-quoted pseudo-JSON, so quotes are normalized
// before decoding; a bad cell yields nil rather than an error.
func parseGeoWeights(raw string) map[string]float64 {
	normalized := strings.ReplaceAll(raw, "'", `"`)

	var weights map[string]float64
	if err := json.Unmarshal([]byte(normalized), &weights); err != nil {
		return nil
	}
	return weights
}
