// Package transforms chains the passes over iterator IR trees.
package transforms

import (
	"github.com/cottand/itir/internal/log"
	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/transforms/cse"
	"github.com/cottand/itir/transforms/inline"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "passes")

// maxInlineIterations bounds how many times lambdas are inlined before giving up
// on reaching a fixpoint
const maxInlineIterations = 10

type Options struct {
	// CSE enables common subexpression elimination
	CSE bool
	// ForceInlineLift inlines lifted stencils even when they are used more than once
	ForceInlineLift bool
}

func DefaultOptions() Options {
	return Options{CSE: true, ForceInlineLift: true}
}

// ApplyCommon runs the passes shared by every backend over n:
//   - inline lambdas until nothing changes
//   - eliminate common subexpressions
//   - inline the lambdas left over that do not duplicate computations
//
// n is not modified.
func ApplyCommon(n ir.Node, opts Options) (ir.Node, error) {
	inlineOpts := inline.Options{OpcountPreserving: true, ForceInlineLift: opts.ForceInlineLift}
	converged := false
	for i := 0; i < maxInlineIterations; i++ {
		inlined := inline.InlineLambdas(n, inlineOpts)
		if ir.Equal(inlined, n) {
			logger.Debug("inlining converged", "iterations", i+1)
			converged = true
			break
		}
		n = inlined
	}
	if !converged {
		return nil, errors.Errorf("inlining lambdas did not converge after %d iterations", maxInlineIterations)
	}

	if opts.CSE {
		n = cse.Eliminate(n)
	}
	n = inline.InlineLambdas(n, inline.Options{OpcountPreserving: true})
	logger.Debug("applied common transforms", "result", n)
	return n, nil
}
