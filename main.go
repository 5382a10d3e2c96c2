package main

import (
	"context"
	"fmt"
	"os"

	"github.com/meenmo/bondpricer/sweep"
)

func main() {
	report, err := sweep.Run(context.Background(), sweep.DefaultGrid(), sweep.Options{Workers: 4})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := sweep.Write(os.Stdout, report.Points); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
