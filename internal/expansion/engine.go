package expansion

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/unihan-tabular/internal/logging"
	"github.com/jonathan/unihan-tabular/internal/types"
)

// Policy selects what happens when a field value fails to decode
type Policy string

const (
	// PolicyAbort stops the run at the first decode error
	PolicyAbort Policy = "abort"
	// PolicySkip drops the failing field, records the error and continues
	PolicySkip Policy = "skip"
)

// ParsePolicy converts a configuration string to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAbort, PolicySkip:
		return Policy(s), nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown decode error policy %q (want abort or skip)", s)
	}
}

const batchSize = 512

// Engine expands records on a bounded pool of workers
type Engine struct {
	Workers int
	Policy  Policy
}

// Report summarizes an ExpandAll run
type Report struct {
	Records int
	Fields  int
	Errors  []error
}

// ExpandAll expands records concurrently. The result keeps the input order.
// Under PolicyAbort the first decode error cancels the remaining work and
// is returned; under PolicySkip failed fields are dropped and listed in the
// report in record order.
func (e *Engine) ExpandAll(ctx context.Context, records []types.RawRecord) ([]types.Record, *Report, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	policy := e.Policy
	if policy == "" {
		policy = PolicyAbort
	}

	out := make([]types.Record, len(records))
	errs := make([][]error, len(records))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(records); start += batchSize {
		if gCtx.Err() != nil {
			break
		}
		end := min(start+batchSize, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				rec, recErrs := Expand(records[i])
				if len(recErrs) > 0 && policy == PolicyAbort {
					return recErrs[0]
				}
				out[i] = rec
				errs[i] = recErrs
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	logger := logging.FromContext(ctx)
	report := &Report{Records: len(out)}
	for i := range out {
		report.Fields += out[i].Len()
		for _, err := range errs[i] {
			logger.Warn("skipping field", "error", err)
			report.Errors = append(report.Errors, err)
		}
	}
	return out, report, nil
}
