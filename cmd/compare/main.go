// Command compare runs the greedy solver and every search construction
// strategy on one seeded sample instance and prints a summary table.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/exp/slog"

	"fleetopt/internal/buildinfo"
	"fleetopt/internal/geo"
	"fleetopt/internal/logging"
	"fleetopt/internal/opt"
)

func main() {
	var (
		n           = flag.Int("n", 10, "number of locations including the depot")
		vehicles    = flag.Int("vehicles", 3, "fleet size")
		radius      = flag.Float64("radius", 30, "sample radius around the depot in km")
		seed        = flag.Int64("seed", 42, "sample and search seed")
		limit       = flag.Duration("time", 5*time.Second, "time limit per search run")
		localSearch = flag.String("local-search", "NONE", "metaheuristic for the search runs")
		maxDist     = flag.Float64("max-distance", 100000, "per vehicle distance ceiling in meters, 0 for none")
		capacity    = flag.Int("capacity", 0, "per vehicle capacity; enables sampled demands when > 0")
		level       = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()
	logging.Setup(*level)

	meta, err := opt.ParseMetaheuristic(*localSearch)
	if err != nil {
		slog.Error("parse local search", "err", err)
		os.Exit(2)
	}
	depot := geo.Point{Lat: -23.5505, Lng: -46.6333}
	pts := geo.SampleLocations(depot, *n, *radius, *seed)
	if err := geo.ValidateLatLng(pts); err != nil {
		slog.Error("sample radius too large", "err", err)
		os.Exit(2)
	}
	matrix, err := geo.BuildMatrix(pts, geo.GreatCircle)
	if err != nil {
		slog.Error("build matrix", "err", err)
		os.Exit(1)
	}
	opts := []opt.Option{opt.WithCoordinates(pts)}
	if *capacity > 0 {
		caps := make([]int, *vehicles)
		for i := range caps {
			caps[i] = *capacity
		}
		opts = append(opts, opt.WithCapacities(geo.SampleDemands(*n, *seed), caps))
	}
	if *maxDist > 0 {
		opts = append(opts, opt.WithMaxDistance(*maxDist))
	}
	p, err := opt.NewProblem(matrix, *vehicles, 0, opts...)
	if err != nil {
		slog.Error("build problem", "err", err)
		os.Exit(2)
	}

	fmt.Printf("fleetopt %s: %d locations, %d vehicles, seed %d\n\n", buildinfo.Version, *n, *vehicles, *seed)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tTOTAL KM\tLONGEST KM\tVEHICLES\tDROPPED\tTIME")

	type run struct {
		label  string
		solver opt.Solver
	}
	runs := []run{{"nearest_neighbor", opt.Greedy{}}}
	for _, st := range opt.Strategies() {
		runs = append(runs, run{
			label:  st.String(),
			solver: opt.Search{Params: opt.Params{TimeLimit: *limit, Strategy: st, LocalSearch: meta, Seed: *seed}},
		})
	}
	for _, r := range runs {
		sol, err := r.solver.Solve(p)
		if err != nil {
			reason := "failed"
			if errors.Is(err, opt.ErrInfeasible) {
				reason = "infeasible"
			} else if errors.Is(err, opt.ErrNoSolution) {
				reason = "no solution"
			}
			fmt.Fprintf(tw, "%s\t%s\t\t\t\t\n", r.label, reason)
			continue
		}
		m := opt.ExtractMetrics(sol)
		label := r.label
		if sol.Stats.Strategy != "" && sol.Stats.Strategy != r.label {
			label += " (" + sol.Stats.Strategy + ")"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%d\t%s\n", label, m.TotalDistance/1000, m.MaxRouteDistance/1000,
			m.VehiclesUsed, len(m.Dropped), m.ExecutionTime.Round(time.Millisecond))
	}
	_ = tw.Flush()
}
