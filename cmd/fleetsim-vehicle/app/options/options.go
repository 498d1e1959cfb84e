package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/fleetsim-io/fleetsim/pkg/log"
	genericoptions "github.com/fleetsim-io/fleetsim/pkg/options"
)

// Options holds everything a single simulated vehicle needs to run.
type Options struct {
	Mqtt    *genericoptions.MqttOptions    `json:"mqtt" mapstructure:"mqtt"`
	S3      *genericoptions.S3Options      `json:"s3" mapstructure:"s3"`
	Metrics *genericoptions.MetricsOptions `json:"metrics" mapstructure:"metrics"`
	Log     *log.Options                   `json:"log" mapstructure:"log"`

	// Identity
	DeviceID     string `json:"device-id" mapstructure:"device-id"`
	VIN          string `json:"vin" mapstructure:"vin"`
	SimulationID string `json:"simulation-id" mapstructure:"simulation-id"`

	// Initial vehicle state
	Odometer         float64 `json:"odometer" mapstructure:"odometer"`
	FuelTankCapacity float64 `json:"fuel-tank-capacity" mapstructure:"fuel-tank-capacity"`
	Latitude         float64 `json:"latitude" mapstructure:"latitude"`
	Longitude        float64 `json:"longitude" mapstructure:"longitude"`

	// Route source. A local file wins over the object store; with neither the
	// vehicle publishes a single standstill snapshot and exits.
	RoutePath   string `json:"route-path" mapstructure:"route-path"`
	RouteBucket string `json:"route-bucket" mapstructure:"route-bucket"`
	RouteKey    string `json:"route-key" mapstructure:"route-key"`

	TelemetryInterval time.Duration `json:"telemetry-interval" mapstructure:"telemetry-interval"`
	DTCInterval       time.Duration `json:"dtc-interval" mapstructure:"dtc-interval"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Mqtt:    genericoptions.NewMqttOptions(),
		S3:      genericoptions.NewS3Options(),
		Metrics: genericoptions.NewMetricsOptions(),
		Log:     log.NewOptions(),

		FuelTankCapacity: 40,
		Latitude:         47.6062,
		Longitude:        -122.3321,

		TelemetryInterval: 12 * time.Second,
		DTCInterval:       time.Second,
	}
}

// AddFlags binds all option groups to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Mqtt.AddFlags(fs)
	o.S3.AddFlags(fs)
	o.Metrics.AddFlags(fs)
	o.Log.AddFlags(fs)

	fs.StringVar(&o.DeviceID, "device-id", o.DeviceID, "Unique device identifier (required).")
	fs.StringVar(&o.VIN, "vin", o.VIN, "Vehicle identification number. Generated when empty.")
	fs.StringVar(&o.SimulationID, "simulation-id", o.SimulationID, "Simulation run this vehicle belongs to.")

	fs.Float64Var(&o.Odometer, "odometer", o.Odometer, "Initial odometer reading in kilometers.")
	fs.Float64Var(&o.FuelTankCapacity, "fuel-tank-capacity", o.FuelTankCapacity, "Fuel tank capacity in liters.")
	fs.Float64Var(&o.Latitude, "latitude", o.Latitude, "Initial latitude, used when no route is supplied.")
	fs.Float64Var(&o.Longitude, "longitude", o.Longitude, "Initial longitude, used when no route is supplied.")

	fs.StringVar(&o.RoutePath, "route-path", o.RoutePath, "Path to a local route file to drive.")
	fs.StringVar(&o.RouteBucket, "route-bucket", o.RouteBucket, "Object-store bucket holding the route to drive.")
	fs.StringVar(&o.RouteKey, "route-key", o.RouteKey, "Object-store key of the route to drive.")

	fs.DurationVar(&o.TelemetryInterval, "telemetry-interval", o.TelemetryInterval, "Interval between telemetry publishes.")
	fs.DurationVar(&o.DTCInterval, "dtc-interval", o.DTCInterval, "Interval between diagnostic trouble code checks.")
}

// Complete fills in derived defaults after flag and config parsing.
func (o *Options) Complete() {
	if o.Mqtt.ClientID == "" {
		o.Mqtt.ClientID = o.DeviceID
	}
}

// Validate checks the combined options.
func (o *Options) Validate() error {
	var errs []error

	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.S3.Validate()...)
	errs = append(errs, o.Metrics.Validate()...)
	errs = append(errs, o.Log.Validate()...)

	if o.DeviceID == "" {
		errs = append(errs, errors.New("--device-id is required"))
	}
	if o.FuelTankCapacity <= 0 {
		errs = append(errs, errors.New("--fuel-tank-capacity must be positive"))
	}
	if o.RouteBucket != "" && o.RouteKey == "" {
		errs = append(errs, errors.New("--route-key is required when --route-bucket is set"))
	}
	if o.RouteKey != "" && o.RouteBucket == "" {
		errs = append(errs, errors.New("--route-bucket is required when --route-key is set"))
	}

	return errors.Join(errs...)
}
