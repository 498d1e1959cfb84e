package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/fleetsim-io/fleetsim/cmd/fleetsim-vehicle/app/options"
	"github.com/fleetsim-io/fleetsim/internal/metrics"
	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/internal/simulator"
	"github.com/fleetsim-io/fleetsim/internal/simulator/dynamics"
	"github.com/fleetsim-io/fleetsim/internal/storage"
	"github.com/fleetsim-io/fleetsim/pkg/log"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt"
)

const (
	commandName = "fleetsim-vehicle"
	commandDesc = `The fleetsim vehicle simulator drives a generated route, publishing
telemetry, diagnostic trouble codes and a trip summary over MQTT, and
executes over-the-air update jobs pushed to the device.`
)

// NewVehicleCommand builds the vehicle simulator command.
func NewVehicleCommand() *cobra.Command {
	opts := options.NewOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:           commandName,
		Short:         "Simulate a single connected vehicle",
		Long:          commandDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, configFile, opts); err != nil {
				return err
			}
			opts.Complete()
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a configuration file.")
	opts.AddFlags(cmd.Flags())

	return cmd
}

// loadConfig overlays file values under explicitly set flags.
func loadConfig(cmd *cobra.Command, configFile string, opts *options.Options) error {
	if configFile == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("apply config file: %w", err)
	}
	return nil
}

func run(opts *options.Options) error {
	log.Init(opts.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r, err := loadRoute(ctx, opts)
	if err != nil {
		return err
	}

	engine, err := dynamics.NewModel(dynamics.Params{
		DeviceID:         opts.DeviceID,
		VIN:              opts.VIN,
		Route:            r,
		Odometer:         opts.Odometer,
		FuelTankCapacity: opts.FuelTankCapacity,
		Latitude:         opts.Latitude,
		Longitude:        opts.Longitude,
		SimulationID:     opts.SimulationID,
	})
	if err != nil {
		return fmt.Errorf("build vehicle model: %w", err)
	}

	client, err := mqtt.NewClient(opts.Mqtt.ToClientConfig())
	if err != nil {
		return fmt.Errorf("build mqtt client: %w", err)
	}
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer client.Disconnect(context.Background())

	vehicle := simulator.New(simulator.Config{
		DeviceID:          opts.DeviceID,
		RouteBucket:       opts.RouteBucket,
		RouteKey:          opts.RouteKey,
		TelemetryInterval: opts.TelemetryInterval,
		DTCInterval:       opts.DTCInterval,
		TopicRoot:         opts.Mqtt.TopicRoot,
	}, engine, client)

	g, gctx := errgroup.WithContext(ctx)

	if opts.Metrics.Enabled {
		srv := metrics.NewServer(opts.Metrics)
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	g.Go(func() error {
		defer cancel() // journey end also stops the metrics listener
		return vehicle.Run(gctx)
	})

	return g.Wait()
}

// loadRoute resolves the configured route source. A nil route is a valid
// outcome and puts the vehicle in single-snapshot mode.
func loadRoute(ctx context.Context, opts *options.Options) (*route.Route, error) {
	switch {
	case opts.RoutePath != "":
		return route.Load(opts.RoutePath)
	case opts.RouteBucket != "":
		store, err := storage.NewMinIOStore(opts.S3)
		if err != nil {
			return nil, fmt.Errorf("build route store: %w", err)
		}
		return store.Fetch(ctx, opts.RouteBucket, opts.RouteKey)
	default:
		return nil, nil
	}
}
