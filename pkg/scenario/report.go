package scenario

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/graph-guard/smallmap/pkg/smallmap"
	"github.com/zeebo/xxh3"
	yaml "gopkg.in/yaml.v3"
)

// Report describes the outcome of a scenario run.
type Report struct {
	RunID      string         `yaml:"run_id"`
	Scenario   string         `yaml:"scenario"`
	FilePath   string         `yaml:"file,omitempty"`
	Steps      int            `yaml:"steps"`
	Capacity   int            `yaml:"capacity"`
	Len        int            `yaml:"len"`
	Order      []string       `yaml:"order"`
	Entries    map[string]int `yaml:"entries"`
	Digest     string         `yaml:"digest"`
	Footprint  string         `yaml:"footprint"`
	Passed     bool           `yaml:"passed"`
	Mismatches []string       `yaml:"mismatches,omitempty"`
}

func newReport(
	runID uuid.UUID,
	s *Scenario,
	m *smallmap.Map[string, int],
) *Report {
	r := &Report{
		RunID:     runID.String(),
		Scenario:  s.Name,
		FilePath:  s.FilePath,
		Steps:     len(s.Steps),
		Capacity:  m.Capacity(),
		Len:       m.Len(),
		Order:     make([]string, 0, m.Len()),
		Entries:   make(map[string]int, m.Len()),
		Digest:    fmt.Sprintf("%016x", Digest(m)),
		Footprint: humanize.IBytes(uint64(m.Footprint())),
	}
	for k, v := range m.All() {
		r.Order = append(r.Order, k)
		r.Entries[k] = v
	}
	return r
}

// Digest returns a fingerprint of the entries of m.
// It doesn't depend on the order of the entries.
func Digest(m *smallmap.Map[string, int]) (d uint64) {
	for k, v := range m.All() {
		d ^= xxh3.HashString(k + "\x00" + strconv.Itoa(v))
	}
	return d
}

// WriteReports writes reports to w as a YAML sequence.
func WriteReports(w io.Writer, reports []*Report) error {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	if err := e.Encode(reports); err != nil {
		return fmt.Errorf("encoding reports: %w", err)
	}
	return e.Close()
}
