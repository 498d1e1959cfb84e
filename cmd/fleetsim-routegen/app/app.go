package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fleetsim-io/fleetsim/cmd/fleetsim-routegen/app/options"
	"github.com/fleetsim-io/fleetsim/internal/geo"
	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/internal/storage"
	"github.com/fleetsim-io/fleetsim/pkg/log"
)

const (
	commandName = "fleetsim-routegen"
	commandDesc = `The fleetsim route generator queries a driving-directions service for a
drivable path near a start point and persists it as a staged route file,
ready for a simulated vehicle to drive.`
)

// NewRouteGenCommand builds the route generator command.
func NewRouteGenCommand() *cobra.Command {
	opts := options.NewOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:           commandName,
		Short:         "Generate a drivable route",
		Long:          commandDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, configFile, opts); err != nil {
				return err
			}
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

	directions := route.NewDirectionsClient(opts.Routing.BaseURL, opts.Routing.AccessToken, opts.Routing.Timeout)
	generator := route.NewGenerator(directions)

	r, err := generator.Generate(ctx, route.GeneratorParams{
		Start:          geo.Point{Lat: opts.StartLatitude, Lon: opts.StartLongitude},
		DistanceMeters: opts.DistanceMeters,
		Triggers:       opts.Triggers(),
		Profile:        route.Profile(opts.Profile),
	})
	if err != nil {
		return fmt.Errorf("generate route: %w", err)
	}

	log.Info("Generated route",
		"name", r.Name,
		"km", r.Km,
		"stages", len(r.Stages),
		"profile", r.Profile,
	)

	if opts.SaveAs != "" {
		if err := r.Save(opts.SaveAs); err != nil {
			return err
		}
		log.Info("Route written", "path", opts.SaveAs)
	}

	if opts.RouteBucket != "" {
		key := opts.RouteKey
		if key == "" {
			key = r.Name + ".json"
		}

		store, err := storage.NewMinIOStore(opts.S3)
		if err != nil {
			return fmt.Errorf("build route store: %w", err)
		}
		if err := store.Put(ctx, opts.RouteBucket, key, r); err != nil {
			return fmt.Errorf("upload route: %w", err)
		}
		log.Info("Route uploaded", "bucket", opts.RouteBucket, "key", key)
	}

	return nil
}
