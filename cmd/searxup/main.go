package main

import (
	"fmt"
	"os"

	"github.com/xerophayze/searxup/internal/searxup"
	"github.com/xerophayze/searxup/internal/tui"
)

func main() {
	var err error
	if len(os.Args) < 2 {
		err = tui.StartWizard()
	} else {
		err = searxup.Run(os.Args[1:])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
