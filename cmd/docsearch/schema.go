package main

import (
	"fmt"

	"github.com/fwojciec/docsearch"
)

// Run executes the setup-schema command.
func (c *SetupSchemaCmd) Run(deps *Dependencies) error {
	if deps.Schema == nil {
		err := docsearch.Errorf(docsearch.EINVALID, "setup-schema requires DOCSEARCH_SOLR_HOST")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	added, err := deps.Schema.SetupSchema(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	if len(added) == 0 {
		fmt.Fprintln(deps.Stdout, "Schema already up to date.")
		return nil
	}
	for _, name := range added {
		fmt.Fprintf(deps.Stdout, "added field %s\n", name)
	}
	return nil
}
