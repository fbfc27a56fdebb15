package resolve

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-smartrender/pkg/registry"
)

// Step is one probe of the resolution walk.
type Step struct {
	// Key is the exact store key that was tried.
	Key registry.Key
	// Depth is the distance along the ancestor chain; 0 is the concrete type.
	Depth int
	// Matched reports whether the key had a registration.
	Matched bool
	// Config holds the matched registration when Matched is true.
	Config *registry.Config
	// Reason states why the step did or did not conclude the walk.
	Reason string
}

// Trace is the ordered diagnostic record of one resolution.
type Trace struct {
	Type   string
	Hints  Hints
	Steps  []Step
	Found  bool
	Config registry.Config
}

// String renders the trace one probe per line for interactive tooling.
func (t Trace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resolve %s (model=%q variation=%q)\n", t.Type, t.Hints.Model, t.Hints.Variation)
	for i, step := range t.Steps {
		marker := " "
		if step.Matched {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %2d. [depth %d] %-40s %s\n", marker, i+1, step.Depth, step.Key.String(), step.Reason)
	}
	if t.Found {
		fmt.Fprintf(&b, "=> %s %q (target %q)\n", t.Config.Kind, t.Config.Name, t.Config.Target)
	} else {
		b.WriteString("=> no registration\n")
	}
	return b.String()
}
