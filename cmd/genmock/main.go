// Command genmock generates mock data fixtures for the test suites: a BLS450
// .mnd day file, the raw JSON records the station collector would publish for
// it, and optionally the flux estimates the pipeline derives from them. It
// uses the actual domain packages so fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -mnd-out data/mock/bls450_200603.mnd \
//	  -raw-out data/mock/bls_records_200603.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/fluxes"
)

var baseTime = time.Date(2020, time.June, 3, 3, 23, 0, 0, time.UTC)

const (
	stationCode     = "hottinger"
	recordCount     = 20
	averaging       = 30 * time.Second
	effectiveHeight = 32.5
	pressureHPa     = 950.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	mndOut := flag.String("mnd-out", "", "output path for the .mnd fixture")
	rawOut := flag.String("raw-out", "", "output path for the raw JSON records fixture")
	fluxOut := flag.String("flux-out", "", "optional output path for the derived flux estimates fixture")
	flag.Parse()

	if *mndOut == "" || *rawOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -mnd-out, -raw-out")
	}

	// Fix the clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime.Add(time.Hour)))
	defer domain.SetClock(nil)

	records := makeRecords()

	if err := writeFile(*mndOut, []byte(renderMND(records))); err != nil {
		return err
	}
	log.Printf("wrote %d .mnd records to %s", len(records), *mndOut)

	if err := writeJSON(*rawOut, records); err != nil {
		return err
	}
	log.Printf("wrote raw records fixture to %s", *rawOut)

	if *fluxOut != "" {
		estimates := deriveAll(records)
		if err := writeJSON(*fluxOut, estimates); err != nil {
			return err
		}
		log.Printf("wrote %d flux estimates to %s", len(estimates), *fluxOut)
	}
	return nil
}

type mockRecord struct {
	time     time.Time
	cn2      float64
	ct2      float64
	hFree    float64
	pressure float64
}

// makeRecords synthesizes a plausible early-morning Cn2 ramp: a smooth rise
// with a sinusoidal wobble, the kind of trace SRun logs as the surface layer
// destabilises after sunrise.
func makeRecords() []mockRecord {
	records := make([]mockRecord, recordCount)
	for i := range records {
		phase := float64(i) / float64(recordCount)
		cn2 := 1.5e-16 * (1 + 0.8*phase + 0.15*math.Sin(6*math.Pi*phase))
		records[i] = mockRecord{
			time:     baseTime.Add(time.Duration(i) * averaging),
			cn2:      cn2,
			ct2:      4.0e-4 * (1 + 0.5*phase),
			hFree:    18.0 * (1 + phase),
			pressure: pressureHPa - 0.05*float64(i),
		}
	}
	return records
}

func (r mockRecord) isoTime() string {
	return fmt.Sprintf("PT00H00M%02dS/%s", int(averaging.Seconds()), r.time.Format(time.RFC3339))
}

func renderMND(records []mockRecord) string {
	var b strings.Builder
	b.WriteString("FORMAT-1.1\n")
	b.WriteString(baseTime.Format(time.RFC3339) + "\n")
	b.WriteString("BLS450\n")
	b.WriteString("Columns 5\n")
	b.WriteString("Station Code: " + stationCode + "\n")
	b.WriteString("#time\n#Cn2\n#CT2\n#H_convection\n#pressure\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%s\t%.6e\t%.6e\t%.3f\t%.2f\n", r.isoTime(), r.cn2, r.ct2, r.hFree, r.pressure)
	}
	return b.String()
}

func deriveAll(records []mockRecord) []domain.FluxEstimate {
	station := domain.Station{
		Code:            stationCode,
		PathLength:      2700,
		EffectiveHeight: effectiveHeight,
	}
	estimates := make([]domain.FluxEstimate, len(records))
	for i, r := range records {
		reading := domain.Reading{
			Station:   stationCode,
			Time:      r.time,
			Averaging: averaging,
			Cn2:       r.cn2,
			CT2:       r.ct2,
			HFree:     r.hFree,
			Pressure:  r.pressure,
		}
		met := domain.Meteorology{
			Temperature: 290.15,
			Pressure:    r.pressure * 100,
			Source:      "station",
		}
		estimates[i] = fluxes.Derive(reading, station, met)
	}
	return estimates
}

// MarshalJSON emits the record in the station collector's wire format.
func (r mockRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(domain.RawBLSRecord{
		Station:     stationCode,
		Time:        r.isoTime(),
		Cn2:         fmt.Sprintf("%.6e", r.cn2),
		CT2:         fmt.Sprintf("%.6e", r.ct2),
		HConvection: fmt.Sprintf("%.3f", r.hFree),
		Pressure:    fmt.Sprintf("%.2f", r.pressure),
	})
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
