// Command simcore runs household financial-plan simulations from a YAML
// plan file. Grounded on the teacher's cmd/rpgo/main.go cobra command tree
// and simpleCLILogger idiom, generalized from the teacher's single
// calculate/validate command pair to this spec's run/validate/server
// surface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/finplan/simcore/internal/config"
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/orchestrator"
	"github.com/finplan/simcore/internal/report"
	"github.com/finplan/simcore/internal/tui"
	"github.com/finplan/simcore/internal/watchserver"
	"github.com/finplan/simcore/internal/watchstore"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements a Debugf/Infof/Warnf/Errorf logger backed by
// the standard log package, matching the teacher's simpleCLILogger.
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var cliLog = simpleCLILogger{}

var rootCmd = &cobra.Command{
	Use:   "simcore",
	Short: "Household financial-plan simulation engine",
	Long:  "Monthly household financial-plan simulator with tax, retirement, and Monte Carlo ensemble support",
}

func runCmd() *cobra.Command {
	var (
		outputPath string
		mode       string
		runs       int
		seed       int64
		summary    bool
		validate   bool
		server     bool
		host       string
		port       int
		watchEvery time.Duration
		dbDSN      string
	)

	cmd := &cobra.Command{
		Use:   "run [plan-file]",
		Short: "Run a simulation from a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := args[0]

			if server {
				return runServer(planPath, host, port, watchEvery, dbDSN)
			}

			cliLog.Infof("loading plan from %s", planPath)
			loader := config.NewLoader()
			plan, err := loader.LoadFromFile(planPath)
			if err != nil {
				return fmt.Errorf("load plan: %w", err)
			}
			if validate {
				fmt.Println("plan is valid")
				return nil
			}

			if mode != "" {
				plan.Simulation.Mode = modeFromFlag(mode)
			}
			if runs > 0 {
				plan.Simulation.Runs = runs
			}
			if seed != 0 {
				plan.Simulation.Seed = seed
			}

			cliLog.Infof("running %s simulation (%d run(s), seed %d)", plan.Simulation.Mode, maxInt(plan.Simulation.Runs, 1), plan.Simulation.Seed)
			result, err := runWithProgress(cmd.Context(), plan)
			if err != nil {
				cliLog.Errorf("simulation failed: %v", err)
				return fmt.Errorf("run simulation: %w", err)
			}

			var formatter report.Formatter = report.TableFormatter{}
			if summary {
				formatter = report.TableFormatter{}
			}
			if outputPath != "" {
				switch ext(outputPath) {
				case ".csv":
					formatter = report.CSVFormatter{}
				case ".pdf":
					formatter = report.PDFFormatter{}
				}
			}

			data, err := formatter.Format(&result)
			if err != nil {
				return fmt.Errorf("format result: %w", err)
			}
			if outputPath == "" {
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}
			return os.WriteFile(outputPath, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write formatted output to this file (.csv/.pdf; default stdout table)")
	cmd.Flags().StringVar(&mode, "mode", "", "override simulation mode: deterministic|monte_carlo|historical")
	cmd.Flags().IntVar(&runs, "runs", 0, "override ensemble run count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the master random seed")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a compact table summary")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the plan file and exit without running a simulation")
	cmd.Flags().BoolVar(&server, "server", false, "run as a watch server instead of a one-shot simulation")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "watch server bind host")
	cmd.Flags().IntVar(&port, "port", 8099, "watch server bind port")
	cmd.Flags().DurationVar(&watchEvery, "watch-interval", 2*time.Second, "plan-file poll interval in server mode")
	cmd.Flags().StringVar(&dbDSN, "db-dsn", "", "optional Postgres DSN for run-history persistence")

	return cmd
}

// runWithProgress runs an ensemble simulation behind a bubbletea progress
// viewer, falling back to a silent orchestrator.Run for deterministic mode
// (a single pass has nothing to show progress on) or a non-interactive
// stdout (e.g. piped output, CI).
func runWithProgress(ctx context.Context, plan *domain.Plan) (domain.SimulationResult, error) {
	if plan.Simulation.Mode == domain.ModeDeterministic || !isTerminal() {
		return orchestrator.Run(ctx, plan)
	}

	runs := plan.Simulation.Runs
	if runs <= 0 {
		runs = 1
	}
	program := tea.NewProgram(tui.New(runs))

	var result domain.SimulationResult
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = orchestrator.Run(ctx, plan, func(completed, total int) {
			program.Send(tui.ProgressMsg{Completed: completed, Total: total})
		})
		if runErr != nil {
			program.Send(tui.ErrMsg{Err: runErr})
			return
		}
		program.Send(tui.DoneMsg{SuccessRate: result.SuccessRate})
	}()

	if _, err := program.Run(); err != nil {
		return domain.SimulationResult{}, fmt.Errorf("render progress: %w", err)
	}
	<-done
	return result, runErr
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func runServer(planPath, host string, port int, interval time.Duration, dbDSN string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store *watchstore.Store
	if dbDSN != "" {
		var err error
		store, err = watchstore.Open(ctx, dbDSN)
		if err != nil {
			return fmt.Errorf("open run-history store: %w", err)
		}
		defer store.Close()
	}

	srv := watchserver.New(planPath, interval, store)
	return srv.Run(ctx, fmt.Sprintf("%s:%d", host, port))
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan-file]",
		Short: "Validate a plan file without running a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			_, err := loader.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println("plan is valid")
			return nil
		},
	}
}

func modeFromFlag(s string) domain.SimulationMode { return domain.SimulationMode(s) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func main() {
	rootCmd.AddCommand(runCmd(), validateCmd())
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
