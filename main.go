package main

import (
	"os"

	"github.com/studycard/studycard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
