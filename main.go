package main

import (
	"os"

	"github.com/gridstor/battbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
