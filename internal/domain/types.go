package domain

import (
	"context"
	"time"
)

// RawBLSRecord represents the flat JSON structure published by the station
// collector. The collector reads the SRun serial/log output and forwards each
// averaging interval as strings, one message per interval; field names match
// the .mnd column headers.
type RawBLSRecord struct {
	Station     string `json:"Station"`
	Time        string `json:"Time"` // mixed ISO-8601 duration/date, e.g. "PT00H00M30S/2020-06-03T03:23:00Z"
	Cn2         string `json:"Cn2"`
	CT2         string `json:"CT2"`
	HConvection string `json:"H_convection"`
	Pressure    string `json:"pressure"` // hPa, from the BLS450 internal sensor
}

// RawMessage represents an unprocessed message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Reading is a single parsed and calibrated scintillometer averaging interval.
type Reading struct {
	Station   string
	Time      time.Time
	Averaging time.Duration
	Cn2       float64 // refractive index structure parameter, m^-2/3
	CT2       float64 // temperature structure parameter as reported by SRun
	HFree     float64 // SRun's own free-convection estimate, W m^-2
	Pressure  float64 // hPa

	RawPayload []byte
}

// FluxEstimate is the derived output destined for the sink topic and the
// PostgreSQL sink. IDs are deterministic so downstream upserts are idempotent.
type FluxEstimate struct {
	ID               string        `json:"id"`
	Station          string        `json:"station"`
	Time             time.Time     `json:"time"`
	Averaging        time.Duration `json:"averaging_ns"`
	Cn2              float64       `json:"cn2"`
	CT2              float64       `json:"ct2"`
	EffectiveHeight  float64       `json:"effective_height"`  // m
	Temperature      float64       `json:"temperature"`       // K, as used in the derivation
	Pressure         float64       `json:"pressure"`          // Pa, as used in the derivation
	SensibleHeatFlux float64       `json:"sensible_heat_flux"` // W m^-2, free convection
	WeatherSource    string        `json:"weather_source,omitempty"` // "provider", "station", "fallback", "failed"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
