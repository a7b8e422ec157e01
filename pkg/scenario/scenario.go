// Package scenario reads YAML scenario files describing a sequence of
// operations on a smallmap.Map[string, int] together with the expected
// outcome of each operation and the expected final state of the map,
// and runs them.
package scenario

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Error kinds a step can expect.
const (
	ErrorNone              = "none"
	ErrorCapacityExceeded  = "capacity_exceeded"
	ErrorDuplicateKey      = "duplicate_key"
	ErrorAliasingViolation = "aliasing_violation"
)

type Scenario struct {
	FilePath string `yaml:"-"`
	Name     string `yaml:"name"`
	Capacity *int   `yaml:"capacity"`
	Steps    []Step `yaml:"steps"`
	Expect   *Final `yaml:"expect"`
}

// Step is a single operation. Exactly one of the operation fields is set.
type Step struct {
	Insert         *KeyValue  `yaml:"insert"`
	TryInsert      *KeyValue  `yaml:"try_insert"`
	Remove         *Key       `yaml:"remove"`
	Get            *Key       `yaml:"get"`
	Contains       *Key       `yaml:"contains"`
	EntryOrInsert  *KeyValue  `yaml:"entry_or_insert"`
	EntryAndModify *KeyDelta  `yaml:"entry_and_modify"`
	ExtractIf      *Predicate `yaml:"extract_if"`
	Retain         *Predicate `yaml:"retain"`
	Disjoint       *Disjoint  `yaml:"disjoint"`
	Extend         []KeyValue `yaml:"extend"`
	Clear          bool       `yaml:"clear"`

	Expect *StepExpect `yaml:"expect"`
}

type Key struct {
	Key string `yaml:"key"`
}

type KeyValue struct {
	Key   string `yaml:"key"`
	Value int    `yaml:"value"`
}

// KeyDelta adds Delta to the value of Key
// or inserts Default if Key doesn't exist.
type KeyDelta struct {
	Key     string `yaml:"key"`
	Delta   int    `yaml:"delta"`
	Default int    `yaml:"default"`
}

// Predicate matches entries by exactly one criterion.
// Limit only applies to extract_if where it stops the extraction
// after Limit entries leaving all entries not visited in the map.
type Predicate struct {
	ValueGTE *int     `yaml:"value_gte"`
	ValueLT  *int     `yaml:"value_lt"`
	KeyIn    []string `yaml:"key_in"`
	Limit    int      `yaml:"limit"`
}

// Match returns true if the entry satisfies the predicate.
func (p *Predicate) Match(key string, value int) bool {
	switch {
	case p.ValueGTE != nil:
		return value >= *p.ValueGTE
	case p.ValueLT != nil:
		return value < *p.ValueLT
	}
	for i := range p.KeyIn {
		if p.KeyIn[i] == key {
			return true
		}
	}
	return false
}

// Disjoint requests mutable access to all Keys at once
// and writes Write[i] to the value of Keys[i] if Write is set.
type Disjoint struct {
	Keys  []string `yaml:"keys"`
	Write []int    `yaml:"write"`
}

// StepExpect holds the expected outcome of a step.
// Unset fields aren't checked.
type StepExpect struct {
	Error     string   `yaml:"error"`
	Value     *int     `yaml:"value"`
	Values    []int    `yaml:"values"`
	Found     *bool    `yaml:"found"`
	Replaced  *bool    `yaml:"replaced"`
	Previous  *int     `yaml:"previous"`
	Extracted []string `yaml:"extracted"`
	Count     *int     `yaml:"count"`
}

// Final holds the expected state of the map after all steps.
type Final struct {
	Len     *int           `yaml:"len"`
	Order   []string       `yaml:"order"`
	Entries map[string]int `yaml:"entries"`
}

// Op returns the name of the step's operation or "" if none is set.
func (s *Step) Op() string {
	ops := s.ops()
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

func (s *Step) ops() (ops []string) {
	add := func(set bool, name string) {
		if set {
			ops = append(ops, name)
		}
	}
	add(s.Insert != nil, "insert")
	add(s.TryInsert != nil, "try_insert")
	add(s.Remove != nil, "remove")
	add(s.Get != nil, "get")
	add(s.Contains != nil, "contains")
	add(s.EntryOrInsert != nil, "entry_or_insert")
	add(s.EntryAndModify != nil, "entry_and_modify")
	add(s.ExtractIf != nil, "extract_if")
	add(s.Retain != nil, "retain")
	add(s.Disjoint != nil, "disjoint")
	add(s.Extend != nil, "extend")
	add(s.Clear, "clear")
	return ops
}

// Read reads and validates the scenario file at path.
// The scenario name defaults to the file name without extension.
func Read(filesystem fs.FS, path string) (*Scenario, error) {
	f, err := filesystem.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	defer f.Close()

	s := &Scenario{FilePath: path}
	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	if err := d.Decode(s); err != nil {
		return nil, &ErrorIllegal{
			FilePath: path,
			Feature:  "scenario",
			Message:  err.Error(),
		}
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.Capacity == nil {
		return nil, &ErrorMissing{FilePath: path, Feature: "capacity"}
	}
	if *s.Capacity < 0 {
		return nil, &ErrorIllegal{
			FilePath: path,
			Feature:  "capacity",
			Message:  fmt.Sprintf("negative capacity %d", *s.Capacity),
		}
	}
	for i := range s.Steps {
		if err := validateStep(&s.Steps[i]); err != "" {
			return nil, &ErrorIllegal{
				FilePath: path,
				Feature:  fmt.Sprintf("steps[%d]", i),
				Message:  err,
			}
		}
	}
	return s, nil
}

func validateStep(s *Step) (err string) {
	switch ops := s.ops(); len(ops) {
	case 0:
		return "no operation"
	case 1:
	default:
		return "multiple operations: " + strings.Join(ops, ", ")
	}

	if s.ExtractIf != nil {
		if err := validatePredicate(s.ExtractIf); err != "" {
			return err
		}
	}
	if s.Retain != nil {
		if err := validatePredicate(s.Retain); err != "" {
			return err
		}
		if s.Retain.Limit != 0 {
			return "limit isn't supported by retain"
		}
	}
	if s.Disjoint != nil && s.Disjoint.Write != nil &&
		len(s.Disjoint.Write) != len(s.Disjoint.Keys) {
		return fmt.Sprintf(
			"expected %d values to write, got %d",
			len(s.Disjoint.Keys), len(s.Disjoint.Write),
		)
	}

	if s.Expect != nil {
		switch s.Expect.Error {
		case "",
			ErrorNone,
			ErrorCapacityExceeded,
			ErrorDuplicateKey,
			ErrorAliasingViolation:
		default:
			return fmt.Sprintf("unknown error kind %q", s.Expect.Error)
		}
	}
	return ""
}

func validatePredicate(p *Predicate) (err string) {
	n := 0
	if p.ValueGTE != nil {
		n++
	}
	if p.ValueLT != nil {
		n++
	}
	if p.KeyIn != nil {
		n++
	}
	if n != 1 {
		return "expected exactly one of value_gte, value_lt, key_in"
	}
	if p.Limit < 0 {
		return fmt.Sprintf("negative limit %d", p.Limit)
	}
	return ""
}

type ErrorMissing struct {
	FilePath string
	Feature  string
}

func (e ErrorMissing) Error() string {
	var b strings.Builder
	if e.Feature == "" {
		b.Grow(len("missing ") + len(e.FilePath))
		b.WriteString("missing ")
		b.WriteString(e.FilePath)
		return b.String()
	}
	b.Grow(len("missing ") + len(e.Feature) + len(" in ") + len(e.FilePath))
	b.WriteString("missing ")
	b.WriteString(e.Feature)
	b.WriteString(" in ")
	b.WriteString(e.FilePath)
	return b.String()
}

type ErrorIllegal struct {
	FilePath string
	Feature  string
	Message  string
}

func (e ErrorIllegal) Error() string {
	var b strings.Builder
	b.Grow(len("illegal ") +
		len(e.Feature) +
		len(" in ") +
		len(e.FilePath) +
		len(": ") +
		len(e.Message))
	b.WriteString("illegal ")
	b.WriteString(e.Feature)
	b.WriteString(" in ")
	b.WriteString(e.FilePath)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
