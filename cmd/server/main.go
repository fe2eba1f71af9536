package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"ch_router/pkg/api"
	"ch_router/pkg/ch"
	"ch_router/pkg/graph"
	"ch_router/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to prepared graph binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	// Load prepared graph.
	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	var numShortcuts uint32
	maxLevel := 0
	all := g.AllEdges()
	for all.Next() {
		if all.Edge().Skipped != graph.InvalidEdge {
			numShortcuts++
		}
	}
	for n := uint32(0); n < g.NumNodes(); n++ {
		if l := g.GetLevel(n); l > maxLevel {
			maxLevel = l
		}
	}
	log.Printf("Loaded: %d nodes, %d edges (%d shortcuts), max level %d",
		g.NumNodes(), g.NumEdges(), numShortcuts, maxLevel)

	// Build routing engine.
	log.Println("Building spatial index...")
	engine := routing.NewEngine(g, func() *routing.BidirectionalDijkstra {
		return ch.NewQueryAlgo(g, nil)
	})

	// Reclaim memory from init-time temporaries. Without this, Go's heap
	// retains peak RSS from index construction.
	runtime.GC()
	debug.FreeOSMemory()

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumNodes:     g.NumNodes(),
		NumEdges:     g.NumEdges(),
		NumShortcuts: numShortcuts,
		MaxLevel:     maxLevel,
	}

	handlers := api.NewHandlers(engine, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
