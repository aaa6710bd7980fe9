package models

// Instrument is one row of the instrument universe: the minimal
// identity the engine needs plus the held position details. Currency
// defaults to EUR and Quantity to 1 when the source omits them.
type Instrument struct {
	Ticker       string             `json:"ticker"`
	Name         string             `json:"name"`
	Currency     string             `json:"currency"`
	Quantity     float64            `json:"quantity"`
	AvgCost      float64            `json:"avg_cost,omitempty"`
	TargetWeight float64            `json:"target_weight,omitempty"`
	GeoWeights   map[string]float64 `json:"geo_weights,omitempty"`
}
