// Package cmd provides the root command and CLI setup for muton.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"muton.dev/pkg/muton/internal/adapter"
	"muton.dev/pkg/muton/internal/controller"
	"muton.dev/pkg/muton/internal/domain"
	m "muton.dev/pkg/muton/internal/model"
)

// exitTestsFailAtOriginal is the exit status of a run whose tests fail
// before any mutation.
const exitTestsFailAtOriginal = 2

var fsAdapter adapter.SourceFSAdapter
var testAdapter adapter.TestRunnerAdapter

// newRunner builds the mutation runner notifying views. Tests replace it.
var newRunner func(dir m.Path, views ...any) domain.Runner

// newUI builds the console view of a command. Tests replace it.
var newUI func(cmd *cobra.Command, showMutants bool) controller.UI

var verboseFlag bool
var reportsOutputDirFlag string

func init() {
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	testAdapter = adapter.NewLocalTestRunnerAdapter()

	newRunner = func(dir m.Path, views ...any) domain.Runner {
		orchestrator := domain.NewOrchestrator(
			fsAdapter,
			testAdapter,
			viper.GetFloat64(timeoutFactorKey),
			viper.GetInt(runParallelConfigKey),
		)

		return domain.NewMutationController(adapter.NewGoPackagesLoader(dir, fsAdapter), orchestrator, views...)
	}

	newUI = func(cmd *cobra.Command, showMutants bool) controller.UI {
		return controller.NewUI(cmd, viper.GetBool(uiTUIKey), showMutants)
	}
}

const targetsHelp = `Targets are Go package patterns, optionally narrowed to one member:
  - ./calc             every file of a package
  - ./calc/add.go      a single file
  - ./calc:Add         one function, type or Type.Method
  - ./...              every package of the module`

const rootLongDescription = `muton is a mutation testing tool for Go. It applies small changes
(mutants) to your code, runs your tests against each of them and reports
the mutants your tests fail to detect.

` + targetsHelp

const runLongDescription = `Run mutation testing of the targets against the unit tests.

The unit tests default to the packages of the targets. The run stops with
exit status 2 when the tests fail on the original code.

` + targetsHelp

const mutantsLongDescription = `List the mutants of the targets without running any test.

` + targetsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "muton",
		Short:         "Go mutation testing tool",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))

			if configErr != nil {
				slog.Warn("Ignoring config file", "error", configErr)
				cmd.PrintErrf("warning: %v, using defaults\n", configErr)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for mutation testing reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrTestsFailAtOriginal) {
		return exitTestsFailAtOriginal
	}

	return 1
}
