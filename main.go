// main is the entry point for the codeline CLI.
package main

import (
	"fmt"
	"os"

	"github.com/codelinehq/codeline/cmd"
	"github.com/codelinehq/codeline/internal/iocache"
)

func main() {
	err := cmd.Execute()

	iocache.CloseCaching()
	if profErr := cmd.StopProfiling(); profErr != nil && err == nil {
		err = profErr
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
