package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"muton.dev/pkg/muton/internal/adapter"
	"muton.dev/pkg/muton/internal/domain"
	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
)

// flagBinding ties a command flag to a config key.
type flagBinding struct {
	flag string
	key  string
}

var selectionBindings = []flagBinding{
	{operatorFlagName, operatorsKey},
	{orderFlagName, orderKey},
	{homStrategyFlagName, homStrategyKey},
	{percentageFlagName, percentageKey},
	{mutationNumberFlagName, mutationNumberKey},
}

var runBindings = []flagBinding{
	{coverageFlagName, coverageKey},
	{timeoutFactorFlagName, timeoutFactorKey},
	{runParallelFlagName, runParallelConfigKey},
	{timeoutAsKilledFlagName, timeoutAsKilledKey},
	{reportFlagName, reportYAMLKey},
	{tuiFlagName, uiTUIKey},
	{telemetryFlagName, telemetryExporterKey},
}

// bindFlags binds the flags of cmd to their config keys. Several commands
// share keys, so binding happens when a command runs.
func bindFlags(cmd *cobra.Command, bindings ...flagBinding) {
	for _, b := range bindings {
		bindFlagToConfig(cmd.Flags().Lookup(b.flag), b.key)
	}
}

// selection holds the flags shared by commands that generate mutants.
type selection struct {
	targets        []string
	operators      []string
	order          int
	homStrategy    string
	percentage     int
	mutationNumber int
	shard          string
}

func newRunCmd() *cobra.Command {
	var (
		sel             selection
		unitTests       []string
		coverage        bool
		timeoutFactor   float64
		parallel        int
		timeoutAsKilled bool
		report          bool
		showMutants     bool
		tui             bool
		telemetry       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run mutation testing",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(cmd, selectionBindings...)
			bindFlags(cmd, runBindings...)

			args, err := sel.runArgs()
			if err != nil {
				return err
			}

			args.Tests = unitTests
			if len(args.Tests) == 0 {
				args.Tests = defaultTests(args.Targets)
			}

			args.Coverage = viper.GetBool(coverageKey)
			args.TimeoutAsKilled = viper.GetBool(timeoutAsKilledKey)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runMutation(ctx, cmd, args, showMutants)
		},
	}

	sel.register(cmd)

	cmd.Flags().StringSliceVarP(&unitTests, unitTestFlagName, "u", nil, "test packages to run against each mutant (default: the target packages)")

	cmd.Flags().BoolVar(&coverage, coverageFlagName, viper.GetBool(coverageKey), "mutate only code executed by the tests")

	cmd.Flags().Float64Var(&timeoutFactor, timeoutFactorFlagName, viper.GetFloat64(timeoutFactorKey), "mutant time budget as a multiple of the baseline test time")

	cmd.Flags().IntVarP(&parallel, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of tests run in parallel while collecting coverage")

	cmd.Flags().BoolVar(&timeoutAsKilled, timeoutAsKilledFlagName, viper.GetBool(timeoutAsKilledKey), "count timed out mutants as killed")

	cmd.Flags().BoolVar(&report, reportFlagName, viper.GetBool(reportYAMLKey), "write a YAML report into the output directory")

	cmd.Flags().BoolVar(&tui, tuiFlagName, viper.GetBool(uiTUIKey), "show the interactive view when writing to a terminal")

	cmd.Flags().BoolVar(&showMutants, showMutantsFlagName, false, "print the diff of every surviving mutant")

	cmd.Flags().StringVar(&telemetry, telemetryFlagName, viper.GetString(telemetryExporterKey),
		"export spans and metrics of the run: none, stdout or file (written into the output directory)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func runMutation(ctx context.Context, cmd *cobra.Command, args domain.RunArgs, showMutants bool) error {
	ui := newUI(cmd, showMutants)
	defer ui.Close(context.WithoutCancel(ctx))

	shutdown, err := setupTelemetry(args.ShardIndex, args.ShardCount)
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to flush telemetry", "error", err)
		}
	}()

	views := []any{ui}

	if viper.GetBool(reportYAMLKey) {
		path, err := reportPath(args.ShardIndex, args.ShardCount)
		if err != nil {
			return err
		}

		views = append(views, adapter.NewReportStore(path, ".", fsAdapter))
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	score, err := newRunner(m.Path(wd), views...).Run(ctx, args)
	if err != nil {
		slog.Error("Mutation run failed", "error", err)
		return err
	}

	slog.Info("Mutation run finished", "score", score.Count(), "mutants", score.All())

	return nil
}

// reportPath returns the report file of a run, creating its directory.
// Each shard writes into its own shard_<index> subdirectory.
func reportPath(shardIndex, shardCount int) (m.Path, error) {
	return outputPath(shardIndex, shardCount, defaultReportFile)
}

func outputPath(shardIndex, shardCount int, name string) (m.Path, error) {
	dir := viper.GetString(outputFlagName)
	if shardCount > 1 {
		dir = filepath.Join(dir, fmt.Sprintf("shard_%d", shardIndex))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	return m.Path(filepath.Join(dir, name)), nil
}

// setupTelemetry installs the exporter selected by telemetry.exporter.
func setupTelemetry(shardIndex, shardCount int) (func(context.Context) error, error) {
	cfg := adapter.TelemetryConfig{Exporter: viper.GetString(telemetryExporterKey)}

	if info, ok := debug.ReadBuildInfo(); ok {
		cfg.Version = info.Main.Version
	}

	if cfg.Exporter == adapter.ExporterFile {
		path, err := outputPath(shardIndex, shardCount, viper.GetString(telemetryFileKey))
		if err != nil {
			return nil, err
		}

		cfg.Path = path
	}

	return adapter.InitTelemetry(cfg)
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&s.targets, targetFlagName, "t", nil, "targets to mutate (repeatable)")
	cobra.CheckErr(cmd.MarkFlagRequired(targetFlagName))

	cmd.Flags().StringSliceVarP(&s.operators, operatorFlagName, "m", viper.GetStringSlice(operatorsKey), "operator codes to apply (default: all)")

	cmd.Flags().IntVar(&s.order, orderFlagName, viper.GetInt(orderKey), "mutation order; above 1 builds higher order mutants")

	cmd.Flags().StringVar(&s.homStrategy, homStrategyFlagName, viper.GetString(homStrategyKey),
		"higher order strategy: "+strings.Join(domain.HOMStrategies, ", "))

	cmd.Flags().IntVar(&s.percentage, percentageFlagName, viper.GetInt(percentageKey), "percentage of candidate mutations to realise")

	cmd.Flags().IntVar(&s.mutationNumber, mutationNumberFlagName, viper.GetInt(mutationNumberKey), "only handle the mutant with this number")

	cmd.Flags().StringVarP(&s.shard, shardFlagName, "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

// runArgs resolves the selection into run arguments.
func (s *selection) runArgs() (domain.RunArgs, error) {
	operators, err := mutagens.ByName(viper.GetStringSlice(operatorsKey)...)
	if err != nil {
		return domain.RunArgs{}, err
	}

	args := domain.RunArgs{
		Targets:        s.targets,
		Operators:      operators,
		Mutator:        domain.NewFirstOrderMutator(),
		MutationNumber: viper.GetInt(mutationNumberKey),
	}

	if order := viper.GetInt(orderKey); order > 1 {
		strategy, err := domain.NewHOMStrategy(viper.GetString(homStrategyKey), order)
		if err != nil {
			return domain.RunArgs{}, err
		}

		args.Mutator = domain.NewHighOrderMutator(strategy)
	}

	if percentage := viper.GetInt(percentageKey); percentage > 0 && percentage < 100 {
		args.Sampler = domain.NewRandomSampler(percentage, nil)
	}

	args.ShardIndex, args.ShardCount = parseShardFlag(s.shard)

	return args, nil
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}

// defaultTests maps targets onto the packages holding them.
func defaultTests(targets []string) []string {
	tests := make([]string, 0, len(targets))
	seen := make(map[string]bool, len(targets))

	for _, target := range targets {
		pattern, _ := adapter.SplitName(target)

		if strings.HasSuffix(pattern, ".go") {
			pattern = filepath.Dir(pattern)
			if !filepath.IsAbs(pattern) && !strings.HasPrefix(pattern, ".") {
				pattern = "./" + pattern
			}
		}

		if !seen[pattern] {
			seen[pattern] = true
			tests = append(tests, pattern)
		}
	}

	return tests
}
