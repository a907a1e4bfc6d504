package filtering

import (
	"context"
	"fmt"
	"strings"
)

type anyFilter struct {
	children []Filter
	disabled bool
	reason   string
}

// NewAny combines child filters with OR semantics: a candidate survives when
// any child accepts it. The composite occupies one slot in the outer chain,
// and a rejection reason is recorded only for candidates rejected by all
// children.
func NewAny(children ...Filter) Filter {
	return &anyFilter{children: children}
}

func (f *anyFilter) Name() string {
	names := make([]string, 0, len(f.children))
	for _, c := range f.children {
		names = append(names, c.Name())
	}
	return "any(" + strings.Join(names, ",") + ")"
}

func (f *anyFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *anyFilter) IsEnabled() bool { return !f.disabled }

func (f *anyFilter) Validate(cfg *Config) error {
	for _, c := range f.children {
		if !c.IsEnabled() {
			continue
		}
		if err := c.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	return nil
}

func (f *anyFilter) Apply(ctx context.Context, deps Deps, set *Set) (*Set, Step, error) {
	initial := set.Len()
	if len(f.children) == 0 {
		return set, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	// Every child sees the full incoming set; survivors are unioned.
	survivors := make(map[string]struct{}, initial)
	childReasons := make(map[string][]string)

	for _, child := range f.children {
		if !child.IsEnabled() {
			continue
		}

		scratch := &Set{
			Items:   append([]*Candidate(nil), set.Items...),
			Reasons: make(map[string][]string),
		}
		next, _, err := child.Apply(ctx, deps, scratch)
		if err != nil {
			return nil, Step{}, fmt.Errorf("%s: %w", child.Name(), err)
		}
		for _, c := range next.Items {
			survivors[c.Job.ID] = struct{}{}
		}
		for id, reasons := range next.Reasons {
			childReasons[id] = append(childReasons[id], reasons...)
		}
	}

	kept := set.Items[:0]
	dropped := 0
	for _, c := range set.Items {
		if _, ok := survivors[c.Job.ID]; ok {
			kept = append(kept, c)
			continue
		}
		set.reject(c, fmt.Sprintf("rejected by all of %s: %s",
			f.Name(), strings.Join(childReasons[c.Job.ID], "; ")))
		dropped++
	}
	set.Items = kept

	return set, Step{Initial: initial, Dropped: dropped, Left: set.Len()}, nil
}

func (f *anyFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
