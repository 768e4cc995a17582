package main

import (
	"fmt"
	"os"

	"github.com/mick2004/beyond-vector-search/cmd/bvs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
