package main

import (
	"os"

	"github.com/compozy/flowctl/cmd"
	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/ui"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		printer := ui.NewPrinterTo(os.Stderr)
		if domain.IsCancelled(err) {
			printer.Cancelled()
		} else {
			printer.Error(err)
		}
	}
	os.Exit(domain.ExitCode(err))
}
