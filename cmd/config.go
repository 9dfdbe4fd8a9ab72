package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "dupeclean"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	workersFlagName   = "workers"
	minSizeFlagName   = "min-size"
	skipFlagName      = "skip"
	verifyFlagName    = "verify"
	logFileFlagName   = "log"
	planFileFlagName  = "plan"
	plainFlagName     = "plain"
	verboseFlagName   = "verbose"
	yesFlagName       = "yes"
	permanentFlagName = "permanent"
	trashDirFlagName  = "trash-dir"

	workersConfigKey   = "scan.workers"
	minSizeConfigKey   = "scan.min_size"
	skipConfigKey      = "scan.skip_dirs"
	verifyConfigKey    = "scan.verify"
	logFileConfigKey   = "report.log_file"
	planFileConfigKey  = "report.plan_file"
	plainConfigKey     = "ui.plain"
	yesConfigKey       = "clean.assume_yes"
	permanentConfigKey = "clean.permanent"
	trashDirConfigKey  = "clean.trash_dir"

	// defaultWorkers of zero means one worker per CPU.
	defaultWorkers   = 0
	defaultMinSize   = 0
	defaultVerify    = false
	defaultLogFile   = "duplicate_log.txt"
	defaultPlanFile  = ""
	defaultPlain     = false
	defaultAssumeYes = false
	defaultPermanent = false
	defaultTrashDir  = "TRASH_BIN"

	envPrefix = "DUPECLEAN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".dupeclean.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// defaultSkipDirs names directories that are never worth scanning:
// recycle bins, system metadata and the tool's own trash directory.
var defaultSkipDirs = []string{
	"$RECYCLE.BIN",
	"$Recycle.Bin",
	"System Volume Information",
	"themes",
	defaultTrashDir,
}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(workersConfigKey, defaultWorkers)
	viper.SetDefault(minSizeConfigKey, defaultMinSize)
	viper.SetDefault(skipConfigKey, defaultSkipDirs)
	viper.SetDefault(verifyConfigKey, defaultVerify)
	viper.SetDefault(logFileConfigKey, defaultLogFile)
	viper.SetDefault(planFileConfigKey, defaultPlanFile)
	viper.SetDefault(plainConfigKey, defaultPlain)
	viper.SetDefault(yesConfigKey, defaultAssumeYes)
	viper.SetDefault(permanentConfigKey, defaultPermanent)
	viper.SetDefault(trashDirConfigKey, defaultTrashDir)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return
		}

		slog.Warn("Ignoring unreadable config file", "path", configFileName, "error", err)
	}
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

	// Logs go to the file, never the terminal, so they cannot garble
	// the progress display.
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
