package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/adrg/xdg"
	slogmulti "github.com/samber/slog-multi"
)

var (
	errConfigRead = errors.New("failed to read config file")
	errLoggerInit = errors.New("failed to initialize logger")
	errLogLevel   = errors.New("invalid log level")
	errFormat     = errors.New("invalid report format")
)

const (
	ConfigDirName     = "squad-stats"
	DefaultConfigName = "squad-stats"
	EnvPrefix         = "squadstats"
)

type ReportFormat string

const (
	FormatJSON  ReportFormat = "json"
	FormatTable ReportFormat = "table"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	// LogFile, when set, receives a copy of all log output in addition to stderr.
	LogFile      string       `mapstructure:"log_file"`
	ReportFormat ReportFormat `mapstructure:"report_format"`
	// Progress shows a progress bar on stderr while the log is processed.
	Progress bool `mapstructure:"progress"`
	// Strict aborts processing when an event references a player or session that does not exist. When
	// disabled the offending line is logged and skipped.
	Strict bool `mapstructure:"strict"`
	// DatabasePath enables exporting the results into a sqlite database.
	DatabasePath string `mapstructure:"database_path"`
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.ReportFormat {
	case FormatJSON, FormatTable:
		return nil
	default:
		return errFormat
	}
}

// Path generates a path pointing to the filename under this apps defined $XDG_CONFIG_HOME.
func Path(name string) string {
	fullPath, errFullPath := xdg.ConfigFile(path.Join(ConfigDirName, name))
	if errFullPath != nil {
		panic(errFullPath)
	}

	return fullPath
}

func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errLogLevel
	}
}

// LoggerInit sets up the slog global handler. Logs always go to stderr since stdout carries the report,
// when logPath is set they are also written to that file.
func LoggerInit(logPath string, level slog.Level) (io.Closer, error) {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	}

	handlers := []slog.Handler{slog.NewTextHandler(os.Stderr, opts)}

	var closer io.Closer = io.NopCloser(nil)

	if logPath != "" {
		logFile, errLogFile := os.Create(logPath)
		if errLogFile != nil {
			return nil, errors.Join(errLogFile, errLoggerInit)
		}

		handlers = append(handlers, slog.NewTextHandler(logFile, opts))
		closer = logFile
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	return closer, nil
}
