package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/HaliroESG/portfolio-project/internal/series"
)

// --- Mock market data client ---

type mockMarketClient struct {
	bars     map[string]models.PriceSeries // keyed by symbol
	barsErr  map[string]error
	meta     *models.QuoteMetadata
	metaErr  error
	requests []string
}

func (m *mockMarketClient) GetDailyBars(_ context.Context, symbol, _ string) (models.PriceSeries, error) {
	m.requests = append(m.requests, symbol)
	if err, ok := m.barsErr[symbol]; ok {
		return nil, err
	}
	return m.bars[symbol], nil
}

func (m *mockMarketClient) GetQuoteMetadata(_ context.Context, _ string) (*models.QuoteMetadata, error) {
	return m.meta, m.metaErr
}

// --- Mock storage ---

type mockWatchStore struct {
	prior     *models.PriorRecord
	priorErr  error
	saved     []*models.InstrumentRecord
	savedSlim []*models.InstrumentRecord
	saveErr   error
	slimErr   error
}

func (m *mockWatchStore) GetRecord(_ context.Context, _, _ string) (*models.InstrumentRecord, error) {
	return nil, interfaces.ErrNotFound
}

func (m *mockWatchStore) GetPrior(_ context.Context, _, _ string) (*models.PriorRecord, error) {
	if m.priorErr != nil {
		return nil, m.priorErr
	}
	if m.prior == nil {
		return nil, interfaces.ErrNotFound
	}
	return m.prior, nil
}

func (m *mockWatchStore) SaveRecord(_ context.Context, record *models.InstrumentRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, record)
	return nil
}

func (m *mockWatchStore) SaveRecordSlim(_ context.Context, record *models.InstrumentRecord) error {
	if m.slimErr != nil {
		return m.slimErr
	}
	m.savedSlim = append(m.savedSlim, record)
	return nil
}

func (m *mockWatchStore) ListRecords(_ context.Context, _ string) ([]*models.InstrumentRecord, error) {
	return nil, nil
}

type mockRateStore struct {
	saved []*models.CurrencyRate
}

func (m *mockRateStore) SaveRate(_ context.Context, rate *models.CurrencyRate) error {
	m.saved = append(m.saved, rate)
	return nil
}

func (m *mockRateStore) GetRates(_ context.Context) (map[string]float64, error) {
	rates := make(map[string]float64)
	for _, r := range m.saved {
		rates[r.Code] = r.RateToEUR
	}
	return rates, nil
}

type mockMacroStore struct {
	saved []*models.MacroIndicator
}

func (m *mockMacroStore) SaveIndicator(_ context.Context, indicator *models.MacroIndicator) error {
	m.saved = append(m.saved, indicator)
	return nil
}

func (m *mockMacroStore) ListIndicators(_ context.Context) ([]*models.MacroIndicator, error) {
	return nil, nil
}

type mockStorageManager struct {
	watch *mockWatchStore
	rates *mockRateStore
	macro *mockMacroStore
}

func newMockStorage() *mockStorageManager {
	return &mockStorageManager{
		watch: &mockWatchStore{},
		rates: &mockRateStore{},
		macro: &mockMacroStore{},
	}
}

func (m *mockStorageManager) WatchStore() interfaces.WatchStore       { return m.watch }
func (m *mockStorageManager) SnapshotStore() interfaces.SnapshotStore { return nil }
func (m *mockStorageManager) RateStore() interfaces.RateStore         { return m.rates }
func (m *mockStorageManager) MacroStore() interfaces.MacroStore       { return m.macro }
func (m *mockStorageManager) WriteRaw(_, _ string, _ []byte) error    { return nil }
func (m *mockStorageManager) Close() error                            { return nil }

// --- Helpers ---

func seriesOf(start time.Time, closes ...float64) models.PriceSeries {
	s := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = models.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return s
}

func testEngineConfig() common.EngineConfig {
	return common.EngineConfig{
		HistoryRange:     "2y",
		TrendRange:       "2y", // same as history: no extra fetch in tests
		StaleAfterDays:   7,
		MaxStaleAgeYears: 10,
		MinPlausibleYear: 2000,
	}
}

func newTestService(market *mockMarketClient, storage *mockStorageManager) *Service {
	svc := NewService(market, storage, testEngineConfig(), common.NewSilentLogger())
	svc.SetRunID("test-run")
	return svc
}

// --- Tests ---

func TestEnrichInstrument_EUR(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	asOf := start.AddDate(0, 0, 3)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"ASML.AS": seriesOf(start, 100, 102, 101, 104),
		},
		meta: &models.QuoteMetadata{
			Ticker:            "ASML.AS",
			TrailingPE:        models.Float(30),
			MarketCap:         models.Float(4e11),
			RegularMarketTime: &asOf,
		},
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)
	svc.SetClock(func() time.Time { return asOf })

	record, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "ASML.AS", Name: "ASML", Currency: "EUR", Quantity: 3})
	if err != nil {
		t.Fatalf("EnrichInstrument: %v", err)
	}

	if record.LastPrice != 104 {
		t.Errorf("LastPrice = %v, want 104", record.LastPrice)
	}
	if record.PerfEUR.Day == nil || *record.PerfEUR.Day != 104.0/101.0-1 {
		t.Errorf("PerfEUR.Day = %v, want %v", record.PerfEUR.Day, 104.0/101.0-1)
	}
	if record.PERatio == nil || *record.PERatio != 30 {
		t.Errorf("PERatio = %v, want 30", record.PERatio)
	}
	if record.DataStatus != models.DataStatusOK {
		t.Errorf("DataStatus = %v, want OK", record.DataStatus)
	}
	if record.TrendState != models.TrendUnknown {
		t.Errorf("TrendState = %v, want UNKNOWN on a 4-bar series", record.TrendState)
	}
	if record.RunID != "test-run" {
		t.Errorf("RunID = %q, want test-run", record.RunID)
	}
	if len(storage.watch.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(storage.watch.saved))
	}

	// EUR instrument must not trigger an FX fetch.
	for _, sym := range market.requests {
		if sym == "EUREUR=X" {
			t.Error("EUR instrument fetched an FX pair")
		}
	}
}

func TestEnrichInstrument_FXFetch(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"AAPL":     seriesOf(start, 200, 204),
			"USDEUR=X": seriesOf(start, 0.9, 0.92),
		},
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	record, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "AAPL", Currency: "usd"})
	if err != nil {
		t.Fatalf("EnrichInstrument: %v", err)
	}

	if record.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", record.Currency)
	}
	if record.PerfEUR.Day == nil {
		t.Fatal("PerfEUR.Day is nil")
	}
	// EUR day return reflects both price and FX movement.
	want := (204 * 0.92) / (200 * 0.9) - 1
	if *record.PerfEUR.Day != want {
		t.Errorf("PerfEUR.Day = %v, want %v", *record.PerfEUR.Day, want)
	}
}

func TestEnrichInstrument_FXFailureIsInstrumentFailure(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"AAPL": seriesOf(start, 200, 204),
		},
		barsErr: map[string]error{
			"USDEUR=X": errors.New("rate limited"),
		},
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	_, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "AAPL", Currency: "USD"})
	if err == nil {
		t.Fatal("expected an error when FX history is unavailable")
	}
	if len(storage.watch.saved) != 0 {
		t.Error("failed instrument must not be persisted")
	}
}

func TestEnrichInstrument_EmptyFXSeriesLeavesEURUndefined(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// The provider answered but had no bars for the pair. The record
	// keeps its local figures; EUR figures must stay undefined rather
	// than being valued at a fabricated parity rate.
	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"AAPL": seriesOf(start, 200, 204),
		},
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	record, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "AAPL", Currency: "USD"})
	if err != nil {
		t.Fatalf("EnrichInstrument: %v", err)
	}

	if record.PerfEUR.Day != nil {
		t.Errorf("PerfEUR.Day = %v, want nil with zero FX observations", *record.PerfEUR.Day)
	}
	if record.PerfLocal.Day == nil {
		t.Fatal("PerfLocal.Day is nil, local figures should survive an FX gap")
	}
	want := 204.0/200.0 - 1
	if *record.PerfLocal.Day != want {
		t.Errorf("PerfLocal.Day = %v, want %v", *record.PerfLocal.Day, want)
	}
}

func TestEnrichInstrument_PriorReadFailureAborts(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"ASML.AS": seriesOf(start, 100, 102),
		},
		metaErr: errors.New("quoteSummary 401"),
	}
	storage := newMockStorage()
	storage.watch.priorErr = errors.New("store read timeout")
	svc := newTestService(market, storage)

	// A failed prior read must abort the instrument: merging a sparse
	// candidate against an empty prior would erase stored valuations.
	_, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "ASML.AS", Currency: "EUR"})
	if err == nil {
		t.Fatal("expected an error when the prior read fails")
	}
	if len(storage.watch.saved) != 0 || len(storage.watch.savedSlim) != 0 {
		t.Error("nothing may be persisted after a failed prior read")
	}
}

func TestEnrichInstrument_InsufficientHistory(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"TINY.PA": seriesOf(start, 12.5),
		},
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	_, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "TINY.PA", Currency: "EUR"})
	if !errors.Is(err, series.ErrInsufficientHistory) {
		t.Fatalf("err = %v, want ErrInsufficientHistory", err)
	}
}

func TestEnrichInstrument_MetadataFailureIsRecoverable(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"ASML.AS": seriesOf(start, 100, 102),
		},
		metaErr: errors.New("quoteSummary 401"),
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	record, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "ASML.AS", Currency: "EUR"})
	if err != nil {
		t.Fatalf("EnrichInstrument: %v", err)
	}
	if record.PERatio != nil || record.MarketCap != nil {
		t.Error("valuation should stay undefined without metadata or prior")
	}
	// No metadata means no last-trade timestamp; it is repaired, not penalized.
	if record.DataStatus != models.DataStatusOK {
		t.Errorf("DataStatus = %v, want OK", record.DataStatus)
	}
}

func TestEnrichInstrument_MergesAgainstPrior(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"ASML.AS": seriesOf(start, 100, 102),
		},
	}
	storage := newMockStorage()
	storage.watch.prior = &models.PriorRecord{
		PERatio:    models.Float(28),
		TrendState: models.TrendBullish,
	}
	svc := newTestService(market, storage)

	record, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "ASML.AS", Currency: "EUR"})
	if err != nil {
		t.Fatalf("EnrichInstrument: %v", err)
	}

	if record.PERatio == nil || *record.PERatio != 28 {
		t.Errorf("PERatio = %v, want prior 28 carried forward", record.PERatio)
	}
	// Candidate trend is UNKNOWN on a short series: no change flag.
	if record.TrendChanged {
		t.Error("TrendChanged must not fire against an UNKNOWN candidate")
	}
}

func TestEnrichInstrument_SlimRetry(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"ASML.AS": seriesOf(start, 100, 102),
		},
	}
	storage := newMockStorage()
	storage.watch.saveErr = errors.New("schema mismatch")
	svc := newTestService(market, storage)

	_, err := svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "ASML.AS", Currency: "EUR"})
	if err != nil {
		t.Fatalf("EnrichInstrument: %v", err)
	}
	if len(storage.watch.savedSlim) != 1 {
		t.Fatalf("slim saves = %d, want 1", len(storage.watch.savedSlim))
	}

	// Both writes failing is an instrument failure.
	storage.watch.slimErr = errors.New("still broken")
	_, err = svc.EnrichInstrument(context.Background(), "main",
		models.Instrument{Ticker: "ASML.AS", Currency: "EUR"})
	if err == nil {
		t.Fatal("expected an error when both saves fail")
	}
}

func TestSyncCurrencies(t *testing.T) {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	market := &mockMarketClient{
		bars: map[string]models.PriceSeries{
			"USDEUR=X": seriesOf(start, 0.90, 0.91),
			"GBPEUR=X": seriesOf(start, 1.16, 1.17),
			// CHF and JPY missing: fetch errors below
		},
		barsErr: map[string]error{
			"CHFEUR=X": errors.New("timeout"),
			"JPYEUR=X": errors.New("timeout"),
		},
	}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	rates, err := svc.SyncCurrencies(context.Background())
	if err != nil {
		t.Fatalf("SyncCurrencies: %v", err)
	}

	if len(rates) != 2 {
		t.Fatalf("rates = %v, want USD and GBP only", rates)
	}
	if rates["USD"] != 0.91 || rates["GBP"] != 1.17 {
		t.Errorf("rates = %v, want latest closes", rates)
	}
	if len(storage.rates.saved) != 2 {
		t.Errorf("persisted %d rates, want 2", len(storage.rates.saved))
	}
}

func TestSyncMacro(t *testing.T) {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	bars := map[string]models.PriceSeries{}
	for _, entry := range macroEntries {
		bars[entry.id] = seriesOf(start, 100, 125)
	}
	bars["^MOVE"] = seriesOf(start, 90) // single bar: skipped

	market := &mockMarketClient{bars: bars}
	storage := newMockStorage()
	svc := newTestService(market, storage)

	if err := svc.SyncMacro(context.Background()); err != nil {
		t.Fatalf("SyncMacro: %v", err)
	}

	if len(storage.macro.saved) != len(macroEntries)-1 {
		t.Fatalf("saved %d indicators, want %d", len(storage.macro.saved), len(macroEntries)-1)
	}
	first := storage.macro.saved[0]
	if first.Value != 125 {
		t.Errorf("Value = %v, want 125", first.Value)
	}
	if first.ChangePct == nil || *first.ChangePct != 0.25 {
		t.Errorf("ChangePct = %v, want 0.25", first.ChangePct)
	}
}
