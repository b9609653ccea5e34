package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/namsral/flag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
