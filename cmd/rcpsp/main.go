// Command rcpsp compiles a resource-constrained project scheduling
// instance with a width-bounded decision-diagram compiler and reports
// the best makespan found.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vcoppe/rcpsp/instance"
	"github.com/vcoppe/rcpsp/rcpsp"
	"github.com/vcoppe/rcpsp/relax"
	"github.com/vcoppe/rcpsp/solve"
)

var (
	width      int
	timeLimit  time.Duration
	threads    int
	metricAddr string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rcpsp <instance-path>",
		Short: "Compile a resource-constrained project scheduling instance",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	cmd.Flags().IntVar(&width, "width", 0, "maximum layer width (default: unassigned-variable count)")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "wall-clock budget (e.g. 30s); 0 disables the limit")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker thread count (default: 1)")
	cmd.Flags().StringVar(&metricAddr, "metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090); empty disables it")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	path := args[0]
	inst, err := instance.Load(path)
	if err != nil {
		return fmt.Errorf("rcpsp: %w", err)
	}
	log.Debug().Str("path", path).Int("jobs", inst.NJobs).Int("resources", inst.NResources).Msg("loaded instance")

	problem := rcpsp.NewProblem(inst)
	relaxation := relax.New(inst)

	effectiveWidth := width
	if effectiveWidth <= 0 {
		effectiveWidth = problem.NbVariables()
	}

	var metrics *solve.Metrics
	if metricAddr != "" {
		registry := prometheus.NewRegistry()
		metrics = solve.NewMetrics(registry)
		go serveMetrics(metricAddr, registry)
	}

	opts := solve.Options{
		Width:     effectiveWidth,
		TimeLimit: timeLimit,
		Threads:   threads,
		Metrics:   metrics,
	}

	start := time.Now()
	result, err := solve.Solve(cmd.Context(), problem, relaxation, opts)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("rcpsp: %w", err)
	}

	fmt.Printf("Best value: %d\n", result.Makespan)
	fmt.Printf("Optimal   : %t\n", result.Optimal)
	fmt.Printf("Elapsed   : %f\n", elapsed.Seconds())

	return nil
}

// serveMetrics exposes registry on path /metrics at addr. It runs for
// the lifetime of the process; a failure to bind is logged and not
// otherwise fatal, since --metrics-addr is a diagnostic aid, not part
// of the compile itself.
func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
	}
}
