// Command scint processes scintillometer field data in batch.
//
// The process subcommand derives sensible heat fluxes from a BLS450 .mnd
// file, a path transect, and an optional ZAMG weather export:
//
//	scint process \
//	  -mnd data/BLS450_2020-06-03.mnd \
//	  -transect data/transect_hottinger.csv \
//	  -stations stations.yaml -station hottinger \
//	  -weather-dir data/klima -weather-station 11803 \
//	  -out fluxes_2020-06-03.csv
//
// The footprint subcommand stitches per-path footprint climatologies into one
// composite source-area grid, masking terrain above the beam:
//
//	scint footprint \
//	  -grid hottinger:0.6=fp_hottinger.asc -grid arbesbach:0.4=fp_arbesbach.asc \
//	  -dem dem_25m.asc -beam-elevation 644.5 \
//	  -out composite.asc
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gampnico/scintillometry-tools/internal/config"
	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/fluxes"
	"github.com/gampnico/scintillometry-tools/internal/footprint"
	"github.com/gampnico/scintillometry-tools/internal/transect"
	"github.com/gampnico/scintillometry-tools/internal/wrangler"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "process":
		err = runProcess(os.Args[2:])
	case "footprint":
		err = runFootprint(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scint <process|footprint> [flags]")
}

func runProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	mndPath := fs.String("mnd", "", "BLS450 .mnd file (required)")
	transectPath := fs.String("transect", "", "path transect CSV (overrides the registry's effective height)")
	stationsPath := fs.String("stations", "", "station registry YAML")
	stationCode := fs.String("station", "", "station code in the registry")
	weatherDir := fs.String("weather-dir", "", "directory of ZAMG klima CSV exports")
	weatherStation := fs.String("weather-station", "", "ZAMG station ID for the weather export")
	fallbackTemp := fs.Float64("fallback-temperature", 288.15, "air temperature in K when no weather data is given")
	timezone := fs.String("timezone", "UTC", "IANA timezone of the input timestamps")
	outPath := fs.String("out", "", "output CSV path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mndPath == "" || *outPath == "" {
		fs.Usage()
		return fmt.Errorf("missing required flags: -mnd, -out")
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	ds, err := wrangler.ParseMNDFile(*mndPath, loc)
	if err != nil {
		return err
	}
	log.Printf("%s: %d records", *mndPath, len(ds.Records))

	station := domain.Station{Code: ds.StationCode}
	if *stationsPath != "" {
		stations, err := config.LoadStations(*stationsPath)
		if err != nil {
			return err
		}
		code := *stationCode
		if code == "" {
			code = ds.StationCode
		}
		s, ok := stations[code]
		if !ok {
			return fmt.Errorf("unknown station %q", code)
		}
		station = s
	}

	if station.NeedsCalibration() {
		if err := ds.Calibrate([]float64{station.ConfiguredLength, station.PathLength}); err != nil {
			return err
		}
		log.Printf("recalibrated path length %g m -> %g m", station.ConfiguredLength, station.PathLength)
	}

	if *transectPath != "" {
		points, err := wrangler.ParseTransectFile(*transectPath)
		if err != nil {
			return err
		}
		heights := make([]float64, len(points))
		positions := make([]float64, len(points))
		for i, pt := range points {
			heights[i] = pt.PathHeight
			positions[i] = pt.NormPosition
		}
		zEff, zMean, err := transect.Parameters(heights, positions, station.Stability)
		if err != nil {
			return err
		}
		station.EffectiveHeight = zEff
		log.Printf("effective height %.2f m (mean %.2f m, stability %q)", zEff, zMean, station.Stability)
	}
	if station.EffectiveHeight <= 0 {
		return fmt.Errorf("no effective height: give -transect or a registry entry with one")
	}

	var weather []wrangler.WeatherRecord
	if *weatherDir != "" {
		if *weatherStation == "" {
			return fmt.Errorf("-weather-dir requires -weather-station")
		}
		day := ds.Records[0].Time
		path := wrangler.ZAMGPath(*weatherDir, *weatherStation, day)
		weather, err = wrangler.ParseZAMGFile(path, *weatherStation, loc)
		if err != nil {
			return err
		}
		log.Printf("%s: %d weather records", path, len(weather))
	}

	estimates, err := deriveEstimates(ds, station, weather, *fallbackTemp)
	if err != nil {
		return err
	}

	if err := writeEstimatesCSV(*outPath, estimates); err != nil {
		return err
	}
	log.Printf("wrote %d flux estimates to %s", len(estimates), *outPath)
	return nil
}

// deriveEstimates turns every dataset record into a flux estimate, taking
// meteorology from the merged weather series when one is given.
func deriveEstimates(ds *wrangler.Dataset, station domain.Station, weather []wrangler.WeatherRecord, fallbackTemp float64) ([]domain.FluxEstimate, error) {
	readings := make([]domain.Reading, 0, len(ds.Records))
	mets := make([]domain.Meteorology, 0, len(ds.Records))

	if len(weather) > 0 {
		merged, err := wrangler.MergeWithWeather(ds, weather)
		if err != nil {
			return nil, err
		}
		for _, m := range merged {
			reading := readingFromValues(station.Code, m.Time, m.Averaging, m.Values)
			met := domain.Meteorology{
				Temperature: m.Values["temperature_2m"],
				Pressure:    m.Values["pressure"] * 100, // hPa -> Pa
				Source:      "station",
			}
			if met.Temperature <= 0 {
				met.Temperature = fallbackTemp
				met.Source = "fallback"
			}
			if met.Pressure <= 0 {
				met.Pressure = 101325
			}
			readings = append(readings, reading)
			mets = append(mets, met)
		}
	} else {
		for _, rec := range ds.Records {
			reading := readingFromValues(station.Code, rec.Time, rec.Averaging, rec.Values)
			met := domain.Meteorology{Temperature: fallbackTemp, Source: "fallback"}
			if reading.Pressure > 0 {
				met.Pressure = reading.Pressure * 100
			} else {
				met.Pressure = 101325
			}
			readings = append(readings, reading)
			mets = append(mets, met)
		}
	}

	estimates := make([]domain.FluxEstimate, len(readings))
	for i := range readings {
		estimates[i] = fluxes.Derive(readings[i], station, mets[i])
	}
	return estimates, nil
}

func readingFromValues(stationCode string, t time.Time, averaging time.Duration, values map[string]float64) domain.Reading {
	return domain.Reading{
		Station:   stationCode,
		Time:      t,
		Averaging: averaging,
		Cn2:       values["Cn2"],
		CT2:       values["CT2"],
		HFree:     values["H_convection"],
		Pressure:  values["pressure"],
	}
}

func writeEstimatesCSV(path string, estimates []domain.FluxEstimate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"time", "station", "cn2", "ct2", "effective_height", "temperature", "pressure", "sensible_heat_flux", "weather_source"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range estimates {
		row := []string{
			e.Time.Format(time.RFC3339),
			e.Station,
			formatFloat(e.Cn2),
			formatFloat(e.CT2),
			formatFloat(e.EffectiveHeight),
			formatFloat(e.Temperature),
			formatFloat(e.Pressure),
			formatFloat(e.SensibleHeatFlux),
			e.WeatherSource,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func runFootprint(args []string) error {
	fs := flag.NewFlagSet("footprint", flag.ExitOnError)
	var grids gridFlags
	fs.Var(&grids, "grid", "footprint grid as station:weight=path (repeatable)")
	demPath := fs.String("dem", "", "terrain model in ESRI ASCII format")
	beamElevation := fs.Float64("beam-elevation", 0, "beam elevation in m ASL for terrain masking")
	outPath := fs.String("out", "", "output ESRI ASCII path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(grids) == 0 || *outPath == "" {
		fs.Usage()
		return fmt.Errorf("missing required flags: -grid, -out")
	}

	contributions := make([]footprint.Contribution, 0, len(grids))
	for _, g := range grids {
		grid, err := footprint.ReadASCIIFile(g.path)
		if err != nil {
			return err
		}
		contributions = append(contributions, footprint.Contribution{
			Station: g.station,
			Weight:  g.weight,
			Grid:    grid,
		})
		log.Printf("%s: %dx%d cells, weight %g", g.path, grid.NCols, grid.NRows, g.weight)
	}

	composite, err := footprint.Stitch(contributions)
	if err != nil {
		return err
	}

	if *demPath != "" {
		dem, err := footprint.ReadASCIIFile(*demPath)
		if err != nil {
			return err
		}
		if err := footprint.MaskTerrain(composite, dem, *beamElevation); err != nil {
			return err
		}
		log.Printf("masked terrain above %g m", *beamElevation)
	}

	if err := footprint.WriteASCIIFile(*outPath, composite); err != nil {
		return err
	}
	log.Printf("wrote composite footprint to %s", *outPath)
	return nil
}

// gridFlags collects repeated -grid station:weight=path flags.
type gridFlags []gridFlag

type gridFlag struct {
	station string
	weight  float64
	path    string
}

func (g *gridFlags) String() string {
	parts := make([]string, len(*g))
	for i, f := range *g {
		parts[i] = fmt.Sprintf("%s:%g=%s", f.station, f.weight, f.path)
	}
	return strings.Join(parts, ",")
}

func (g *gridFlags) Set(value string) error {
	label, path, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("grid flag %q is not station:weight=path", value)
	}
	station, weightStr, ok := strings.Cut(label, ":")
	if !ok {
		return fmt.Errorf("grid flag %q is not station:weight=path", value)
	}
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		return fmt.Errorf("grid weight %q: %w", weightStr, err)
	}
	*g = append(*g, gridFlag{station: station, weight: weight, path: path})
	return nil
}
