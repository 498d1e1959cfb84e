package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/fleetsim-io/fleetsim/cmd/fleetsim-routegen/app"
)

func main() {
	if err := app.NewRouteGenCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
