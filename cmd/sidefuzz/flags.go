package main

import (
	"flag"
	"fmt"

	"github.com/sidefuzz/sidefuzz/log"
)

// flagSet wraps flag.FlagSet the way cmd/eth2030/flags.go does, adding
// support for value types the standard flag package has no constructor
// for.
type flagSet struct {
	*flag.FlagSet
}

func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// LogLevelVar binds a --log-level flag, rejecting an unrecognized level
// name at parse time instead of silently falling back to info.
func (fs *flagSet) LogLevelVar(p *log.LogLevel, name string, value log.LogLevel, usage string) {
	*p = value
	fs.FlagSet.Var(&logLevelValue{p: p}, name, usage)
}

type logLevelValue struct{ p *log.LogLevel }

func (v *logLevelValue) String() string {
	if v.p == nil {
		return "info"
	}
	return v.p.String()
}

func (v *logLevelValue) Set(s string) error {
	switch s {
	case "debug", "info", "warn", "warning", "error":
		*v.p = log.LevelFromString(s)
		return nil
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn, or error)", s)
	}
}

// logFormatValue validates --log-format against the formatters package
// log ships: text, json, color.
type logFormatValue struct{ p *string }

func (v *logFormatValue) String() string {
	if v.p == nil {
		return "text"
	}
	return *v.p
}

func (v *logFormatValue) Set(s string) error {
	switch s {
	case "text", "json", "color":
		*v.p = s
		return nil
	default:
		return fmt.Errorf("invalid log format %q (want text, json, or color)", s)
	}
}
