package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/fleetsim-io/fleetsim/cmd/fleetsim-vehicle/app"
)

func main() {
	if err := app.NewVehicleCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
