package main

import (
	"os"

	"github.com/nodegraph/modelresolver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
