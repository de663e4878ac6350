// Command sidefuzz fuzzes WebAssembly modules for timing side channels.
//
// Usage:
//
//	sidefuzz fuzz <wasm-file>
//	sidefuzz check <wasm-file> <hex-input-1> <hex-input-2>
//	sidefuzz count <wasm-file> <hex-input>
//
// Flags (all three subcommands):
//
//	-log-level   debug, info, warn, error (default: info)
//	-log-format  text, json, color (default: color on a terminal, text otherwise)
//	-log-file    write diagnostics to a rotated file instead of stderr
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sidefuzz/sidefuzz/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the testable entry point: it never calls os.Exit itself so
// tests can drive it directly.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "fuzz":
		return runFuzzCmd(args[1:])
	case "check":
		return runCheckCmd(args[1:])
	case "count":
		return runCountCmd(args[1:])
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage:
  sidefuzz fuzz <wasm-file>
  sidefuzz check <wasm-file> <hex-input-1> <hex-input-2>
  sidefuzz count <wasm-file> <hex-input>`)
}

// commonFlags are the logging flags shared by every subcommand.
type commonFlags struct {
	level   log.LogLevel
	format  string
	logFile string
}

func bindCommonFlags(fs *flagSet, cf *commonFlags) {
	fs.LogLevelVar(&cf.level, "log-level", log.INFO, "log level: debug, info, warn, error")
	fs.FlagSet.Var(&logFormatValue{p: &cf.format}, "log-format", "log format: text, json, color")
	fs.StringVar(&cf.logFile, "log-file", "", "write diagnostics to a rotated file instead of stderr")
}

// setupLogger builds the diagnostics logger described by cf. It never
// affects the plain-text report lines the subcommands themselves print
// to stdout, only the structured diagnostics written to stderr (or a
// log file).
func setupLogger(cf commonFlags) *log.Logger {
	level := levelToSlog(cf.level)

	if cf.logFile != "" {
		lj := &lumberjack.Logger{Filename: cf.logFile, MaxSize: 10, MaxBackups: 3, MaxAge: 28}
		if cf.format == "json" {
			return log.NewWithFormatter(level, &log.JSONFormatter{}, lj)
		}
		return log.NewWithFormatter(level, &log.TextFormatter{}, lj)
	}

	format := cf.format
	if format == "" {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			format = "color"
		} else {
			format = "text"
		}
	}

	var w io.Writer = os.Stderr
	switch format {
	case "color":
		if !isatty.IsTerminal(os.Stderr.Fd()) {
			return log.NewWithFormatter(level, &log.TextFormatter{}, w)
		}
		return log.NewWithFormatter(level, &log.ColorFormatter{}, colorable.NewColorable(os.Stderr))
	case "json":
		return log.NewWithFormatter(level, &log.JSONFormatter{}, w)
	default:
		return log.NewWithFormatter(level, &log.TextFormatter{}, w)
	}
}

func levelToSlog(l log.LogLevel) slog.Level {
	switch l {
	case log.DEBUG:
		return slog.LevelDebug
	case log.WARN:
		return slog.LevelWarn
	case log.ERROR, log.FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
