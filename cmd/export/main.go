package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"ch_router/pkg/graph"
)

// feature is a GeoJSON feature for one edge.
type feature struct {
	Type       string         `json:"type"`
	Geometry   lineString     `json:"geometry"`
	Properties edgeProperties `json:"properties"`
}

type lineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"` // [lng, lat]
}

type edgeProperties struct {
	EdgeID    uint32  `json:"edge_id"`
	Weight    float64 `json:"weight"`
	Shortcut  bool    `json:"shortcut"`
	FromLevel int     `json:"from_level"`
	ToLevel   int     `json:"to_level"`
	Oneway    bool    `json:"oneway"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// Dumps a prepared graph as GeoJSON for inspection in a map viewer.
// Shortcuts render as straight lines between their endpoints.
func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to prepared graph binary")
	output := flag.String("output", "-", "Output GeoJSON path (- for stdout)")
	shortcutsOnly := flag.Bool("shortcuts-only", false, "Export only shortcut edges")
	flag.Parse()

	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	fc := featureCollection{Type: "FeatureCollection"}

	all := g.AllEdges()
	for all.Next() {
		e := all.Edge()
		isShortcut := e.Skipped != graph.InvalidEdge
		if *shortcutsOnly && !isShortcut {
			continue
		}

		fromLat, fromLon := g.Coord(e.From)
		toLat, toLon := g.Coord(e.To)

		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Geometry: lineString{
				Type:        "LineString",
				Coordinates: [][2]float64{{fromLon, fromLat}, {toLon, toLat}},
			},
			Properties: edgeProperties{
				EdgeID:    all.EdgeID(),
				Weight:    e.Weight,
				Shortcut:  isShortcut,
				FromLevel: g.GetLevel(e.From),
				ToLevel:   g.GetLevel(e.To),
				Oneway:    !e.Flags.IsBackward(),
			},
		})
	}

	out := os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	if err := enc.Encode(fc); err != nil {
		log.Fatalf("Failed to write GeoJSON: %v", err)
	}

	log.Printf("Exported %d features", len(fc.Features))
}
