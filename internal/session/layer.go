package session

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

// Layer and source identifiers shared with the renderer.
const (
	SourceID       = "hazards"
	HeatmapLayerID = "hazards-heat"
	SymbolLayerID  = "hazards-point"
)

// HeatmapMaxZoom is the zoom at which the heatmap has fully faded out in
// favour of the pins.
const HeatmapMaxZoom = 9

// DefaultMagnitude weights features without a "mag" property.
const DefaultMagnitude = 1.0

// Icon identifiers registered with the map engine.
const (
	IconFlood   = "flood-icon"
	IconTree    = "tree-icon"
	IconDefault = "warning-icon"
)

var iconByType = map[domain.HazardType]string{
	domain.HazardFloodedRoad: IconFlood,
	domain.HazardTreeDown:    IconTree,
}

// Icons lists every icon the symbol layer can reference.
func Icons() []string {
	return []string{IconFlood, IconTree, IconDefault}
}

// IconFor maps a wire category to its pin. Unrecognized categories get the
// default icon.
func IconFor(hazardType string) string {
	t, ok := domain.ParseHazardType(hazardType)
	if !ok {
		return IconDefault
	}
	if icon, ok := iconByType[t]; ok {
		return icon
	}
	return IconDefault
}

// Stop is one input/output pair of a linear interpolation.
type Stop struct {
	In  float64 `json:"in" yaml:"in"`
	Out float64 `json:"out" yaml:"out"`
}

// Interpolation is a piecewise-linear ramp over ascending stops, clamped at
// both ends.
type Interpolation []Stop

// At evaluates the ramp at x.
func (ip Interpolation) At(x float64) float64 {
	if len(ip) == 0 {
		return 0
	}
	if x <= ip[0].In {
		return ip[0].Out
	}
	for i := 1; i < len(ip); i++ {
		lo, hi := ip[i-1], ip[i]
		if x <= hi.In {
			t := (x - lo.In) / (hi.In - lo.In)
			return lo.Out + t*(hi.Out-lo.Out)
		}
	}
	return ip[len(ip)-1].Out
}

// ColorStop maps heatmap density to a color.
type ColorStop struct {
	Density float64 `json:"density" yaml:"density"`
	Color   string  `json:"color" yaml:"color"`
}

// HeatPoint is one weighted heatmap sample.
type HeatPoint struct {
	Lng    float64 `json:"lng" yaml:"lng"`
	Lat    float64 `json:"lat" yaml:"lat"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// HeatmapLayer is the density rendering used at low zoom.
type HeatmapLayer struct {
	ID        string        `json:"id" yaml:"id"`
	Source    string        `json:"source" yaml:"source"`
	MaxZoom   float64       `json:"maxzoom" yaml:"maxzoom"`
	Weight    Interpolation `json:"weight" yaml:"weight"`       // over magnitude
	Intensity Interpolation `json:"intensity" yaml:"intensity"` // over zoom
	Radius    Interpolation `json:"radius" yaml:"radius"`       // over zoom
	Opacity   Interpolation `json:"opacity" yaml:"opacity"`     // over zoom
	Colors    []ColorStop   `json:"colors" yaml:"colors"`
	Points    []HeatPoint   `json:"points" yaml:"points"`
}

// OpacityAt returns the layer opacity at zoom. Above MaxZoom the layer is
// hidden.
func (h HeatmapLayer) OpacityAt(zoom float64) float64 {
	if zoom > h.MaxZoom {
		return 0
	}
	return h.Opacity.At(zoom)
}

// Symbol is one rendered pin.
type Symbol struct {
	Lng        float64        `json:"lng" yaml:"lng"`
	Lat        float64        `json:"lat" yaml:"lat"`
	Icon       string         `json:"icon" yaml:"icon"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// SymbolLayer is the discrete pin rendering.
type SymbolLayer struct {
	ID       string   `json:"id" yaml:"id"`
	Source   string   `json:"source" yaml:"source"`
	IconSize float64  `json:"iconSize" yaml:"iconSize"`
	Symbols  []Symbol `json:"symbols" yaml:"symbols"`
}

// Layers is everything the renderer draws for one snapshot.
type Layers struct {
	Heatmap HeatmapLayer `json:"heatmap" yaml:"heatmap"`
	Symbol  SymbolLayer  `json:"symbol" yaml:"symbol"`
}

// Project derives both layers from a collection. It keeps no state; call it
// again for every snapshot. Non-point features are skipped.
func Project(fc *geojson.FeatureCollection) Layers {
	heat := newHeatmapLayer()
	sym := SymbolLayer{ID: SymbolLayerID, Source: SourceID, IconSize: 0.5}

	if fc != nil {
		heat.Points = make([]HeatPoint, 0, len(fc.Features))
		sym.Symbols = make([]Symbol, 0, len(fc.Features))
		for _, f := range fc.Features {
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			heat.Points = append(heat.Points, HeatPoint{
				Lng:    pt.Lon(),
				Lat:    pt.Lat(),
				Weight: heat.Weight.At(magnitudeOf(f)),
			})
			sym.Symbols = append(sym.Symbols, Symbol{
				Lng:        pt.Lon(),
				Lat:        pt.Lat(),
				Icon:       IconFor(f.Properties.MustString(domain.PropHazardType, "")),
				Properties: copyProperties(f.Properties),
			})
		}
	}

	return Layers{Heatmap: heat, Symbol: sym}
}

func newHeatmapLayer() HeatmapLayer {
	return HeatmapLayer{
		ID:        HeatmapLayerID,
		Source:    SourceID,
		MaxZoom:   HeatmapMaxZoom,
		Weight:    Interpolation{{In: 0, Out: 0}, {In: 6, Out: 1}},
		Intensity: Interpolation{{In: 0, Out: 1}, {In: HeatmapMaxZoom, Out: 3}},
		Radius:    Interpolation{{In: 0, Out: 2}, {In: HeatmapMaxZoom, Out: 20}},
		Opacity:   Interpolation{{In: 7, Out: 1}, {In: HeatmapMaxZoom, Out: 0}},
		Colors: []ColorStop{
			{Density: 0, Color: "rgba(33,102,172,0)"},
			{Density: 0.2, Color: "rgb(103,169,207)"},
			{Density: 0.4, Color: "rgb(209,229,240)"},
			{Density: 0.6, Color: "rgb(253,219,199)"},
			{Density: 0.8, Color: "rgb(239,138,98)"},
			{Density: 1, Color: "rgb(178,24,43)"},
		},
	}
}

func magnitudeOf(f *geojson.Feature) float64 {
	if v, ok := f.Properties[domain.PropMagnitude].(float64); ok {
		return v
	}
	return DefaultMagnitude
}

func copyProperties(p geojson.Properties) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
