package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
)

const EnvLogLevel = "SMALLMAP_LOG_LEVEL"

const DefaultLogLevel = "info"

var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Command can be any of:
//
//	CommandRun
type Command any

type CommandRun struct {
	Scenarios []string
	LogLevel  string

	// Out is the path of the report file, reports aren't written if empty.
	Out string
}

func Parse(w io.Writer, args []string) (cmd Command) {
	fm := fmt.Sprintf

	executableName := "smallmap"
	if len(args) > 0 {
		executableName = filepath.Base(args[0])
	}

	flags := flag.NewFlagSet("smallmap", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	usage := func() {
		writeLines(w,
			fm("usage: %s <command> [flags]", executableName),
			"",
			"commands available:",
			" run - runs scenario files",
			" help - prints help",
		)
	}

	parseFlags := func() (ok bool) {
		err := flags.Parse(args[2:])
		if err == nil {
			return true
		}
		if !errors.Is(err, flag.ErrHelp) {
			writeLines(w, err.Error())
		}
		usage()
		return false
	}

	if len(args) < 2 {
		usage()
		return nil
	}

	switch args[1] {
	case "run":
		c := CommandRun{LogLevel: os.Getenv(EnvLogLevel)}
		if c.LogLevel == "" {
			c.LogLevel = DefaultLogLevel
		}
		defaultLevel := c.LogLevel

		usage = func() {
			writeLines(w,
				"",
				fm("usage: %s run [--log-level <level>] [--out <path>] "+
					"<scenario>...", executableName),
				"",
				"flags:",
				fm("--log-level <level>: one of %s (default: %s)",
					strings.Join(LogLevels, ", "), defaultLevel),
				"--out <path>: writes the reports as YAML to path",
				"",
				"environment variables:",
				fm("%s: default log level", EnvLogLevel),
			)
		}

		flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "")
		flags.StringVar(&c.Out, "out", "", "")
		if !parseFlags() {
			return nil
		}

		if !isLogLevel(c.LogLevel) {
			writeLines(w, fm("unknown log level: %q", c.LogLevel))
			usage()
			return nil
		}

		c.Scenarios = flags.Args()
		if len(c.Scenarios) < 1 {
			writeLines(w, "no scenario files provided")
			usage()
			return nil
		}
		cmd = c

	case "help":
		PrintHelp(w)
		return nil

	default:
		usage()
		return nil
	}
	return cmd
}

func isLogLevel(s string) bool {
	for _, l := range LogLevels {
		if l == s {
			return true
		}
	}
	return false
}

func writeLines(w io.Writer, lines ...string) {
	for i := range lines {
		_, _ = w.Write([]byte(lines[i]))
		_, _ = w.Write([]byte("\n"))
	}
}

func PrintHelp(w io.Writer) {
	writeLines(w,
		"smallmap runs scenarios against a fixed capacity map "+
			"and reports the outcome.",
		"",
		"A scenario is a YAML file listing operations, "+
			"their expected outcomes",
		"and the expected final state of the map.",
	)
}
