package main

import (
	"fmt"

	"github.com/fwojciec/docsearch"
)

// Run executes the delete command. Each step prints its own outcome.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	outcomes, err := deps.Acquisition.Delete(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	for _, o := range outcomes {
		fmt.Fprintln(deps.Stdout, o)
	}
	return nil
}
