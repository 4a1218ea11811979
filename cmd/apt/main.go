// Command apt runs the vector pipeline: order reduction, totals, filtering,
// normalisation, PPMI weighting, composition and intersection.
package main

import (
	"errors"
	"os"

	"github.com/cognicore/apt/pkg/apt/internalerr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration errors and 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, internalerr.ErrInvalidConfig) {
		return 2
	}
	return 1
}
