package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/blackboard"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/observability"
)

var runCmd = &cobra.Command{
	Use:   "run <tree.xml>",
	Short: "Build a tree and tick it until it completes",
	Long: `Run builds the tree from the given XML document using the stock leaf set
(AlwaysSuccess, AlwaysFailure, SetBlackboard, Sleep) and ticks it until the
root returns a terminal status.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	runCmd.Flags().String("tree", "", "ID of the BehaviorTree to execute (default: main_tree_to_execute)")
	runCmd.Flags().Duration("period", 10*time.Millisecond, "Sleep between ticks while the root is Running")
	runCmd.Flags().String("blackboard", "", "YAML file seeding the root blackboard")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().Bool("trace", false, "Print a per-node tick trace")
	rootCmd.AddCommand(runCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	treeID, _ := cmd.Flags().GetString("tree")
	period, _ := cmd.Flags().GetDuration("period")
	seedPath, _ := cmd.Flags().GetString("blackboard")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	trace, _ := cmd.Flags().GetBool("trace")

	output := termenv.NewOutput(os.Stdout)
	metrics := observability.NewMetrics()

	hooks := metrics.Hooks()
	if trace {
		collect := hooks.OnNodeResult
		hooks.OnNodeResult = func(ev *domain.NodeEvent) {
			collect(ev)
			fmt.Fprintf(os.Stdout, "%s -> %s\n", ev.Path, renderStatus(output, ev.Status))
		}
	}

	factory := canopy.NewFactory(
		canopy.WithLogger(newLogger(cmd)),
		canopy.WithLifecycleHooks(hooks),
	)
	factory.RegisterStockNodes()

	if err := factory.RegisterTreesFromFile(args[0]); err != nil {
		return err
	}

	bb := blackboard.New()
	if seedPath != "" {
		if err := seedBlackboard(bb, seedPath); err != nil {
			return err
		}
	}

	tree, err := factory.CreateTreeWithBlackboard(treeID, bb)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		router := chi.NewRouter()
		router.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, router); err != nil {
				slog.Error("metrics listener failed", "error", err)
			}
		}()
	}

	status, err := tree.TickWhileRunning(period)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "tree [%s] finished: %s\n", tree.ID(), renderStatus(output, status))
	return nil
}

// seedBlackboard loads a YAML mapping into the root scope.
func seedBlackboard(bb *blackboard.Blackboard, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read blackboard seed: %w", err)
	}
	seed := make(map[string]any)
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse blackboard seed: %w", err)
	}
	for key, value := range seed {
		bb.Set(key, value)
	}
	return nil
}

// renderStatus colors a status the way the reference implementation does:
// green Success, red Failure, yellow Running, blue Skipped, cyan Idle.
func renderStatus(output *termenv.Output, status domain.NodeStatus) string {
	var color termenv.Color
	switch status {
	case domain.StatusSuccess:
		color = termenv.ANSIGreen
	case domain.StatusFailure:
		color = termenv.ANSIRed
	case domain.StatusRunning:
		color = termenv.ANSIYellow
	case domain.StatusSkipped:
		color = termenv.ANSIBlue
	default:
		color = termenv.ANSICyan
	}
	return output.String(status.String()).Foreground(color).String()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
