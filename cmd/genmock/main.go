// Command genmock writes a deterministic GET /hazards response fixture for
// the hazard API test suites and local mock servers. Rows come from a CSV
// file when -csv is given, otherwise from a seeded random scatter around
// -lat/-lng. It builds features with the domain package so the fixture
// matches what the client decodes.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/hazards.json -n 50 -seed 7
//	go run ./cmd/genmock -out data/mock/hazards.json -csv data/hazards.csv
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

var fixtureNow = time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC)

var otherNotes = []string{
	"debris on shoulder",
	"pothole in right lane",
	"signal out",
	"ice patch on bridge",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the GET /hazards fixture")
	csvPath := flag.String("csv", "", "optional CSV with lat,lng,hazardType,notes,minutesAgo columns")
	n := flag.Int("n", 25, "number of random hazards when -csv is not set")
	seed := flag.Uint64("seed", 1, "random seed")
	lat := flag.Float64("lat", 30.2672, "scatter center latitude")
	lng := flag.Float64("lng", -97.7431, "scatter center longitude")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fixed clock for reproducible createdAt values.
	clock := clockwork.NewFakeClockAt(fixtureNow)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	var (
		hazards []domain.Hazard
		err     error
	)
	if *csvPath != "" {
		hazards, err = readCSV(*csvPath, clock.Now())
		if err != nil {
			return fmt.Errorf("processing %s: %w", *csvPath, err)
		}
	} else {
		hazards = scatter(rand.New(rand.NewPCG(*seed, *seed)), *n, *lat, *lng, clock.Now())
	}
	log.Printf("total: %d hazards", len(hazards))

	fc := geojson.NewFeatureCollection()
	for _, h := range hazards {
		fc.Append(domain.NewFeature(h))
	}
	if err := writeEnvelope(*out, fc); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(hazards)
	return nil
}

func scatter(r *rand.Rand, n int, lat, lng float64, now time.Time) []domain.Hazard {
	types := domain.HazardTypes()
	hazards := make([]domain.Hazard, 0, n)
	for i := range n {
		h := domain.Hazard{
			ID:        strconv.Itoa(i + 1),
			Lat:       lat + (r.Float64()-0.5)*0.5,
			Lng:       lng + (r.Float64()-0.5)*0.5,
			Type:      types[r.IntN(len(types))],
			CreatedAt: now.Add(-time.Duration(r.IntN(72*60)) * time.Minute),
		}
		if h.Type == domain.HazardOther {
			h.Notes = otherNotes[r.IntN(len(otherNotes))]
		}
		if r.IntN(4) == 0 {
			mag := float64(1 + r.IntN(5))
			h.Magnitude = &mag
		}
		hazards = append(hazards, h)
	}
	return hazards
}

func readCSV(path string, now time.Time) ([]domain.Hazard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	hazards := make([]domain.Hazard, 0, len(rows)-1)
	for line, row := range rows[1:] {
		lat, errLat := strconv.ParseFloat(get(row, colIdx, "lat"), 64)
		lng, errLng := strconv.ParseFloat(get(row, colIdx, "lng"), 64)
		if errLat != nil || errLng != nil {
			return nil, fmt.Errorf("row %d: invalid coordinates", line+2)
		}
		t, ok := domain.ParseHazardType(get(row, colIdx, "hazardType"))
		if !ok {
			return nil, fmt.Errorf("row %d: unknown hazard type %q", line+2, get(row, colIdx, "hazardType"))
		}
		ago, _ := strconv.Atoi(get(row, colIdx, "minutesAgo"))

		d := domain.Draft{Lat: lat, Lng: lng, Type: t, Notes: get(row, colIdx, "notes")}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		h := domain.Hazard{
			ID:        strconv.Itoa(line + 1),
			Lat:       d.Lat,
			Lng:       d.Lng,
			Type:      d.Type,
			Notes:     d.Notes,
			CreatedAt: now.Add(-time.Duration(ago) * time.Minute),
		}
		hazards = append(hazards, h)
	}
	return hazards, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// writeEnvelope writes fc wrapped the way the hazard API returns it.
func writeEnvelope(path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(struct {
		Type    string          `json:"type"`
		GeoJSON json.RawMessage `json:"geojson"`
	}{Type: "hazards", GeoJSON: raw}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(hazards []domain.Hazard) {
	counts := map[string]int{}
	for _, h := range hazards {
		counts[h.Type.Label()]++
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	fmt.Println("\nBy type:")
	for _, l := range labels {
		fmt.Printf("  %-14s %d\n", l, counts[l])
	}
}
