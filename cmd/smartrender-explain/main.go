// Command smartrender-explain loads a registration manifest and walks the
// resolution precedence for a chosen subject type, printing every key tried
// and why it did or did not match. Interactive debugging tooling; not meant
// for the render hot path.
//
//	smartrender-explain -manifest rules.yaml
//	smartrender-explain -manifest rules.yaml -type OnlineCourse -variation compact
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-smartrender/pkg/registry"
	"github.com/goliatone/go-smartrender/pkg/resolve"
	"github.com/goliatone/go-smartrender/pkg/subject"
)

const noneChoice = "(none)"

func main() {
	manifestPath := flag.String("manifest", "", "path to the YAML registration manifest (required)")
	typeName := flag.String("type", "", "subject type to resolve; prompted when omitted")
	modelName := flag.String("model", "", "model override hint; prompted when omitted")
	variation := flag.String("variation", "", "variation hint; prompted when omitted")
	flag.Parse()

	if err := run(*manifestPath, *typeName, *modelName, *variation); err != nil {
		fmt.Fprintf(os.Stderr, "smartrender-explain: %v\n", err)
		os.Exit(1)
	}
}

func run(manifestPath, typeName, modelName, variation string) error {
	if manifestPath == "" {
		return fmt.Errorf("-manifest is required")
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := registry.ParseManifest(data)
	if err != nil {
		return err
	}

	store := registry.NewStore()
	types, err := manifest.Apply(store)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return fmt.Errorf("manifest declares no types")
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	if typeName == "" {
		if err := survey.AskOne(&survey.Select{
			Message: "Subject type:",
			Options: names,
		}, &typeName); err != nil {
			return err
		}
	}
	t, ok := types[typeName]
	if !ok {
		return fmt.Errorf("type %q is not declared in the manifest", typeName)
	}

	if modelName == "" {
		choice := noneChoice
		if err := survey.AskOne(&survey.Select{
			Message: "Model override:",
			Options: append([]string{noneChoice}, names...),
			Default: noneChoice,
		}, &choice); err != nil {
			return err
		}
		if choice != noneChoice {
			modelName = choice
		}
	}

	if variation == "" {
		if err := survey.AskOne(&survey.Input{
			Message: "Variation (empty for none):",
		}, &variation); err != nil {
			return err
		}
	}

	trace := resolve.New(store).Explain(t, resolve.Hints{
		Model:     modelName,
		Variation: variation,
	})
	fmt.Print(trace.String())
	printAncestry(t)
	return nil
}

func printAncestry(t *subject.Type) {
	chain := t.Linearization()
	if len(chain) < 2 {
		return
	}
	fmt.Printf("ancestry: ")
	for i, ancestor := range chain {
		if i > 0 {
			fmt.Print(" -> ")
		}
		fmt.Print(ancestor.Name())
	}
	fmt.Println()
}
