package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"muton.dev/pkg/muton/internal/adapter"
	"muton.dev/pkg/muton/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "muton"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName          = "output"
	verboseFlagName         = "verbose"
	targetFlagName          = "target"
	unitTestFlagName        = "unit-test"
	operatorFlagName        = "operator"
	orderFlagName           = "order"
	homStrategyFlagName     = "hom-strategy"
	percentageFlagName      = "percentage"
	coverageFlagName        = "coverage"
	mutationNumberFlagName  = "mutation-number"
	timeoutFactorFlagName   = "timeout-factor"
	runParallelFlagName     = "parallel"
	shardFlagName           = "shard"
	timeoutAsKilledFlagName = "timeout-as-killed"
	reportFlagName          = "report"
	showMutantsFlagName     = "show-mutants"
	tuiFlagName             = "tui"
	telemetryFlagName       = "telemetry"

	timeoutFactorKey     = "run.timeout_factor"
	runParallelConfigKey = "run.parallel"
	operatorsKey         = "run.operators"
	orderKey             = "run.order"
	homStrategyKey       = "run.hom_strategy"
	percentageKey        = "run.percentage"
	coverageKey          = "run.coverage"
	mutationNumberKey    = "run.mutation_number"
	timeoutAsKilledKey   = "score.timeout_as_killed"
	reportYAMLKey        = "report.yaml"
	uiTUIKey             = "ui.tui"
	telemetryExporterKey = "telemetry.exporter"
	telemetryFileKey     = "telemetry.file"

	defaultReportsDir      = ".muton-reports"
	defaultReportFile      = "report.yaml"
	defaultTimeoutFactor   = 5.0
	defaultRunParallel     = 1
	defaultOrder           = 1
	defaultHOMStrategy     = domain.FirstToLast
	defaultPercentage      = 100
	defaultTimeoutAsKilled = true
	defaultReportYAML      = true
	defaultTUI             = true
	defaultTelemetryFile   = "telemetry.json"

	envPrefix = "MUTON"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".muton.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// configErr holds the failure to read an existing config file. It is
// reported once the logger is configured.
var configErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	configErr = readConfig()
}

// readConfig reads the config file. A missing file is not an error.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to read %s: %w", viper.ConfigFileUsed(), err)
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)

	viper.SetDefault(timeoutFactorKey, defaultTimeoutFactor)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(operatorsKey, []string{})
	viper.SetDefault(orderKey, defaultOrder)
	viper.SetDefault(homStrategyKey, defaultHOMStrategy)
	viper.SetDefault(percentageKey, defaultPercentage)
	viper.SetDefault(coverageKey, false)
	viper.SetDefault(mutationNumberKey, 0)
	viper.SetDefault(timeoutAsKilledKey, defaultTimeoutAsKilled)
	viper.SetDefault(reportYAMLKey, defaultReportYAML)
	viper.SetDefault(uiTUIKey, defaultTUI)
	viper.SetDefault(telemetryExporterKey, adapter.ExporterNone)
	viper.SetDefault(telemetryFileKey, defaultTelemetryFile)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
