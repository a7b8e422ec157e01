package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/graph-guard/smallmap/pkg/cli"
	"github.com/graph-guard/smallmap/pkg/scenario"
	"github.com/natefinch/atomic"
	plog "github.com/phuslu/log"
)

// run runs all scenarios of c and returns false if any of them
// couldn't be read or didn't pass.
func run(w io.Writer, c cli.CommandRun) (ok bool) {
	l := plog.Logger{
		Level:      plog.ParseLevel(c.LogLevel),
		TimeField:  "time",
		TimeFormat: "15:04:05",
		Writer:     &plog.IOWriter{Writer: w},
	}
	r := scenario.NewRunner(l)

	ok = true
	reports := make([]*scenario.Report, 0, len(c.Scenarios))
	for _, p := range c.Scenarios {
		s, err := scenario.Read(os.DirFS(filepath.Dir(p)), filepath.Base(p))
		if err != nil {
			l.Error().Err(err).Str("file", p).Msg("reading scenario")
			ok = false
			continue
		}
		s.FilePath = p

		rep, err := r.Run(s)
		reports = append(reports, rep)
		if err != nil {
			ok = false
		}
	}

	passed := 0
	for _, rep := range reports {
		if rep.Passed {
			passed++
		}
	}
	fmt.Fprintf(w, "%d/%d scenarios passed (run %s)\n",
		passed, len(c.Scenarios), r.RunID())

	if c.Out != "" {
		var b bytes.Buffer
		if err := scenario.WriteReports(&b, reports); err != nil {
			l.Error().Err(err).Msg("encoding reports")
			return false
		}
		if err := atomic.WriteFile(c.Out, &b); err != nil {
			l.Error().Err(err).Str("file", c.Out).Msg("writing reports")
			return false
		}
	}
	return ok
}
