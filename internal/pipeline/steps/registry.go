// Package steps defines the build steps, their dependencies, and which of
// them a given run executes.
package steps

import (
	"fmt"
	"strings"
)

// Step names
const (
	StepFetch     = "fetch"
	StepExtract   = "extract"
	StepNormalize = "normalize"
	StepExpand    = "expand"
	StepPrune     = "prune"
	StepExport    = "export"
	StepValidate  = "validate_output"
	StepStore     = "store"
)

// Step categories
const (
	CategorySource = "source"
	CategoryDecode = "decode"
	CategoryOutput = "output"
)

// StepDefinition defines metadata for a build step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepFetch: {
		Name:         StepFetch,
		Category:     CategorySource,
		Dependencies: []string{},
		Optional:     []string{},
	},
	StepExtract: {
		Name:         StepExtract,
		Category:     CategorySource,
		Dependencies: []string{StepFetch},
		Optional:     []string{},
	},
	StepNormalize: {
		Name:         StepNormalize,
		Category:     CategoryDecode,
		Dependencies: []string{StepExtract},
		Optional:     []string{},
	},
	StepExpand: {
		Name:         StepExpand,
		Category:     CategoryDecode,
		Dependencies: []string{StepNormalize},
		Optional:     []string{},
	},
	StepPrune: {
		Name:         StepPrune,
		Category:     CategoryDecode,
		Dependencies: []string{StepExpand},
		Optional:     []string{},
	},
	StepExport: {
		Name:         StepExport,
		Category:     CategoryOutput,
		Dependencies: []string{StepNormalize},
		Optional:     []string{StepExpand, StepPrune},
	},
	StepValidate: {
		Name:         StepValidate,
		Category:     CategoryOutput,
		Dependencies: []string{StepExport},
		Optional:     []string{},
	},
	StepStore: {
		Name:         StepStore,
		Category:     CategoryOutput,
		Dependencies: []string{StepNormalize},
		Optional:     []string{StepExpand, StepPrune},
	},
}

// Order is the execution order of the steps
var Order = []string{
	StepFetch,
	StepExtract,
	StepNormalize,
	StepExpand,
	StepPrune,
	StepExport,
	StepValidate,
	StepStore,
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %s", e.Step, strings.Join(e.MissingDependencies, ", "))
}

// ValidateDependencies checks that every required dependency of stepName
// is in done.
func ValidateDependencies(stepName string, done map[string]bool) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !done[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// PlanOptions selects the optional steps of a run. Fetch, extract and
// normalize always run.
type PlanOptions struct {
	Expand   bool
	Prune    bool
	Export   bool
	Validate bool
	Store    bool
}

// Plan returns the enabled steps in execution order. It fails with a
// *DependencyError when an enabled step depends on a disabled one.
func Plan(opts PlanOptions) ([]string, error) {
	enabled := map[string]bool{
		StepFetch:     true,
		StepExtract:   true,
		StepNormalize: true,
		StepExpand:    opts.Expand,
		StepPrune:     opts.Prune,
		StepExport:    opts.Export,
		StepValidate:  opts.Validate,
		StepStore:     opts.Store,
	}

	var plan []string
	for _, name := range Order {
		if !enabled[name] {
			continue
		}
		if err := ValidateDependencies(name, enabled); err != nil {
			return nil, err
		}
		plan = append(plan, name)
	}
	return plan, nil
}
