package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"osrm-route-service/internal/adapters/distance"
	"osrm-route-service/internal/config"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/engine"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	dataPath  string
	algorithm string
	logLevel  string
	timeout   time.Duration

	logger *zap.Logger
	eng    *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "osrmctl",
	Short: "Query a local OSRM dataset from the command line",
	Long: `osrmctl loads a prepared OSRM dataset in-process and runs table, route,
trip and planning queries against it. Points are written "lat,lon".

Example:
  osrmctl --data /data/france.osrm simple-route 48.8566,2.3522 43.2965,5.3698`,
	SilenceUsage:      true,
	PersistentPreRunE: openEngine,
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Duration matrix from every source to every destination",
	RunE:  runTable,
}

var routeCmd = &cobra.Command{
	Use:   "route [point...]",
	Short: "Fastest route visiting the points in order",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

var simpleRouteCmd = &cobra.Command{
	Use:   "simple-route [from] [to]",
	Short: "Distance and duration of the fastest A to B route",
	Args:  cobra.ExactArgs(2),
	RunE:  runSimpleRoute,
}

var tripCmd = &cobra.Command{
	Use:   "trip [point...]",
	Short: "Round trip with an optimized visit order (raw engine document)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrip,
}

var planCmd = &cobra.Command{
	Use:   "plan [stop...]",
	Short: "Greedy nearest-neighbor visit order from --start",
	RunE:  runPlan,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Prepared .osrm base path (or set OSRM_ENGINE_DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&algorithm, "algorithm", "MLD", "MLD or CH (or set OSRM_ENGINE_ALGORITHM)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	tableCmd.Flags().StringSlice("source", nil, "Source point (repeatable)")
	tableCmd.Flags().StringSlice("dest", nil, "Destination point (repeatable)")

	planCmd.Flags().String("start", "", "Start point (required)")
	planCmd.Flags().Int("vehicles", 1, "Number of vehicles")
	planCmd.Flags().Bool("return", false, "Include the return leg to start")
	planCmd.Flags().Int("concurrency", 4, "Engine queries in flight")
	_ = planCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(tableCmd, routeCmd, simpleRouteCmd, tripCmd, planCmd)
}

func main() {
	code := 0
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	if eng != nil {
		_ = eng.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
	os.Exit(code)
}

// openEngine resolves flags against the environment (.env included) and
// loads the dataset. Explicit flags win.
func openEngine(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	logger, err = obs.NewLogger(logLevel, "console")
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("data") {
		dataPath = config.Get("OSRM_ENGINE_DATA_PATH", dataPath)
	}
	if !cmd.Flags().Changed("algorithm") {
		algorithm = config.Get("OSRM_ENGINE_ALGORITHM", algorithm)
	}

	if dataPath == "" {
		return fmt.Errorf("--data is required")
	}
	algo, err := domain.ParseAlgorithm(algorithm)
	if err != nil {
		return err
	}

	eng, err = engine.New(dataPath, algo, engine.WithLogger(logger))
	return err
}

func parsePoints(args []string) ([]domain.Point, error) {
	out := make([]domain.Point, 0, len(args))
	for _, a := range args {
		p, err := domain.ParsePoint(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTable(cmd *cobra.Command, args []string) error {
	srcArgs, _ := cmd.Flags().GetStringSlice("source")
	dstArgs, _ := cmd.Flags().GetStringSlice("dest")

	sources, err := parsePoints(srcArgs)
	if err != nil {
		return err
	}
	destinations, err := parsePoints(dstArgs)
	if err != nil {
		return err
	}

	resp, err := eng.Table(domain.NewTableRequest(sources, destinations))
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}

func runRoute(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}

	resp, err := eng.Route(domain.NewRouteRequest(points...))
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}

func runSimpleRoute(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}

	resp, err := eng.SimpleRoute(points[0], points[1])
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}

func runTrip(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}

	resp, err := eng.Trip(domain.NewTripRequest(points...))
	if err != nil {
		return err
	}
	return printJSON(cmd, resp.Raw)
}

func runPlan(cmd *cobra.Command, args []string) error {
	startArg, _ := cmd.Flags().GetString("start")
	vehicles, _ := cmd.Flags().GetInt("vehicles")
	returnToStart, _ := cmd.Flags().GetBool("return")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	start, err := domain.ParsePoint(startArg)
	if err != nil {
		return err
	}
	stops, err := parsePoints(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := distance.NewOSRMDistanceProvider(eng, nil, distance.OSRMProviderConfig{
		Concurrency: concurrency,
	}, logger)
	if err != nil {
		return err
	}

	plans, err := services.PlanFleet(ctx, services.FleetRequest{
		Start:         start,
		Stops:         stops,
		Vehicles:      vehicles,
		DepartAt:      time.Now().UTC(),
		ReturnToStart: returnToStart,
		Concurrency:   concurrency,
	}, provider)
	if err != nil {
		return err
	}
	return printJSON(cmd, plans)
}
