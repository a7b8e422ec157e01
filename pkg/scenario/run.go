package scenario

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/graph-guard/smallmap/pkg/smallmap"
	plog "github.com/phuslu/log"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// Runner runs scenarios. All scenarios run by the same runner
// share its run ID.
type Runner struct {
	log   plog.Logger
	runID uuid.UUID
}

func NewRunner(log plog.Logger) *Runner {
	return &Runner{log: log, runID: uuid.New()}
}

func (r *Runner) RunID() uuid.UUID { return r.runID }

// Mismatch is a violated expectation.
// Step is -1 for expectations on the final state.
type Mismatch struct {
	Step     int
	Op       string
	Feature  string
	Expected any
	Actual   any
}

func (e *Mismatch) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf(
			"final: expected %s %v, got %v",
			e.Feature, e.Expected, e.Actual,
		)
	}
	return fmt.Sprintf(
		"step %d (%s): expected %s %v, got %v",
		e.Step, e.Op, e.Feature, e.Expected, e.Actual,
	)
}

// outcome is the observed result of a step.
// Fields that don't apply to the operation are nil.
type outcome struct {
	err       error
	value     *int
	values    []int
	found     *bool
	replaced  *bool
	previous  *int
	extracted []string
	count     *int
}

// Run runs all steps of s on a new map of s.Capacity.
// The returned report is never nil, the error combines all
// mismatches as *Mismatch.
func (r *Runner) Run(s *Scenario) (*Report, error) {
	log := r.log
	log.Context = plog.NewContext(nil).
		Str("run", r.runID.String()).
		Str("scenario", s.Name).Value()

	m := smallmap.New[string, int](*s.Capacity)

	var err error
	for i := range s.Steps {
		step := &s.Steps[i]
		op := step.Op()
		o := execute(m, step)

		log.Debug().
			Int("step", i).
			Str("op", op).
			Int("len", m.Len()).
			Str("error", errorKind(o.err)).
			Msg("step")

		if step.Expect != nil {
			err = multierr.Append(err, compare(i, op, step.Expect, &o))
		}
	}

	if s.Expect != nil {
		err = multierr.Append(err, compareFinal(m, s.Expect))
	}

	rep := newReport(r.runID, s, m)
	for _, e := range multierr.Errors(err) {
		log.Warn().Str("mismatch", e.Error()).Msg("expectation violated")
		rep.Mismatches = append(rep.Mismatches, e.Error())
	}
	rep.Passed = err == nil

	l := log.Info()
	if err != nil {
		l = log.Warn()
	}
	l.Int("steps", rep.Steps).
		Int("len", rep.Len).
		Str("digest", rep.Digest).
		Str("footprint", rep.Footprint).
		Int("mismatches", len(rep.Mismatches)).
		Msg("scenario finished")

	return rep, err
}

func execute(m *smallmap.Map[string, int], s *Step) (o outcome) {
	switch {
	case s.Insert != nil:
		prev, replaced, err := m.Insert(s.Insert.Key, s.Insert.Value)
		o.err, o.replaced = err, &replaced
		if replaced {
			o.previous = &prev
		}

	case s.TryInsert != nil:
		p, err := m.TryInsert(s.TryInsert.Key, s.TryInsert.Value)
		o.err = err
		var oe *smallmap.OccupiedError[string, int]
		if errors.As(err, &oe) {
			v := oe.Entry.Get()
			o.value = &v
		} else if p != nil {
			v := *p
			o.value = &v
		}

	case s.Remove != nil:
		v, ok := m.Remove(s.Remove.Key)
		o.found = &ok
		if ok {
			o.value = &v
		}

	case s.Get != nil:
		v, ok := m.Get(s.Get.Key)
		o.found = &ok
		if ok {
			o.value = &v
		}

	case s.Contains != nil:
		ok := m.ContainsKey(s.Contains.Key)
		o.found = &ok

	case s.EntryOrInsert != nil:
		p, err := m.Entry(s.EntryOrInsert.Key).OrInsert(s.EntryOrInsert.Value)
		o.err = err
		if p != nil {
			v := *p
			o.value = &v
		}

	case s.EntryAndModify != nil:
		d := s.EntryAndModify
		p, err := m.Entry(d.Key).
			AndModify(func(v *int) { *v += d.Delta }).
			OrInsert(d.Default)
		o.err = err
		if p != nil {
			v := *p
			o.value = &v
		}

	case s.ExtractIf != nil:
		pred := s.ExtractIf
		x := m.ExtractIf(func(k string, v *int) bool { return pred.Match(k, *v) })
		o.extracted = []string{}
		for pred.Limit == 0 || len(o.extracted) < pred.Limit {
			k, _, ok := x.Next()
			if !ok {
				break
			}
			o.extracted = append(o.extracted, k)
		}
		n := len(o.extracted)
		o.count = &n

	case s.Retain != nil:
		before := m.Len()
		m.Retain(func(k string, v *int) bool { return s.Retain.Match(k, *v) })
		n := before - m.Len()
		o.count = &n

	case s.Disjoint != nil:
		p, err := m.GetDisjointMut(s.Disjoint.Keys...)
		o.err = err
		if err == nil {
			o.values = make([]int, len(p))
			for i := range p {
				o.values[i] = *p[i]
				if s.Disjoint.Write != nil {
					*p[i] = s.Disjoint.Write[i]
				}
			}
		}

	case s.Extend != nil:
		pairs := make([]smallmap.Pair[string, int], len(s.Extend))
		for i, kv := range s.Extend {
			pairs[i] = smallmap.Pair[string, int]{Key: kv.Key, Value: kv.Value}
		}
		n, err := m.ExtendPairs(pairs...)
		o.err, o.count = err, &n

	case s.Clear:
		m.Clear()
	}
	return o
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, smallmap.ErrCapacityExceeded):
		return ErrorCapacityExceeded
	case errors.Is(err, smallmap.ErrDuplicateKey):
		return ErrorDuplicateKey
	case errors.Is(err, smallmap.ErrAliasingViolation):
		return ErrorAliasingViolation
	}
	return err.Error()
}

func compare(step int, op string, e *StepExpect, o *outcome) (err error) {
	mismatch := func(feature string, expected, actual any) {
		err = multierr.Append(err, &Mismatch{
			Step:     step,
			Op:       op,
			Feature:  feature,
			Expected: expected,
			Actual:   actual,
		})
	}

	if e.Error != "" {
		if k := errorKind(o.err); k != e.Error {
			mismatch("error", e.Error, k)
		}
	} else if o.err != nil {
		mismatch("error", ErrorNone, errorKind(o.err))
	}

	if e.Value != nil && (o.value == nil || *o.value != *e.Value) {
		mismatch("value", *e.Value, deref(o.value))
	}
	if e.Values != nil && !slices.Equal(e.Values, o.values) {
		mismatch("values", e.Values, o.values)
	}
	if e.Found != nil && (o.found == nil || *o.found != *e.Found) {
		mismatch("found", *e.Found, deref(o.found))
	}
	if e.Replaced != nil && (o.replaced == nil || *o.replaced != *e.Replaced) {
		mismatch("replaced", *e.Replaced, deref(o.replaced))
	}
	if e.Previous != nil && (o.previous == nil || *o.previous != *e.Previous) {
		mismatch("previous", *e.Previous, deref(o.previous))
	}
	if e.Extracted != nil && !slices.Equal(e.Extracted, o.extracted) {
		mismatch("extracted", e.Extracted, o.extracted)
	}
	if e.Count != nil && (o.count == nil || *o.count != *e.Count) {
		mismatch("count", *e.Count, deref(o.count))
	}
	return err
}

func compareFinal(m *smallmap.Map[string, int], e *Final) (err error) {
	mismatch := func(feature string, expected, actual any) {
		err = multierr.Append(err, &Mismatch{
			Step:     -1,
			Feature:  feature,
			Expected: expected,
			Actual:   actual,
		})
	}

	if e.Len != nil && *e.Len != m.Len() {
		mismatch("len", *e.Len, m.Len())
	}
	if e.Order != nil {
		order := make([]string, 0, m.Len())
		for k := range m.Keys() {
			order = append(order, k)
		}
		if !slices.Equal(e.Order, order) {
			mismatch("order", e.Order, order)
		}
	}
	if e.Entries != nil {
		entries := make(map[string]int, m.Len())
		for k, v := range m.All() {
			entries[k] = v
		}
		if !cmp.Equal(e.Entries, entries) {
			mismatch("entries", e.Entries, entries)
		}
	}
	return err
}

// deref returns the value p points to or "nothing" if p is nil.
func deref[T any](p *T) any {
	if p == nil {
		return "nothing"
	}
	return *p
}
