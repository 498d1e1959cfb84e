package options

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/pkg/log"
	genericoptions "github.com/fleetsim-io/fleetsim/pkg/options"
)

// Options configures one route generation run.
type Options struct {
	Routing *genericoptions.RoutingOptions `json:"routing" mapstructure:"routing"`
	S3      *genericoptions.S3Options      `json:"s3" mapstructure:"s3"`
	Log     *log.Options                   `json:"log" mapstructure:"log"`

	// Generation request
	StartLatitude  float64 `json:"start-latitude" mapstructure:"start-latitude"`
	StartLongitude float64 `json:"start-longitude" mapstructure:"start-longitude"`
	DistanceMeters float64 `json:"distance-meters" mapstructure:"distance-meters"`
	Profile        string  `json:"profile" mapstructure:"profile"`

	DTCTriggers     int `json:"dtc-triggers" mapstructure:"dtc-triggers"`
	OilTempTriggers int `json:"oiltemp-triggers" mapstructure:"oiltemp-triggers"`

	// Outputs; at least one must be set.
	SaveAs      string `json:"save-as" mapstructure:"save-as"`
	RouteBucket string `json:"route-bucket" mapstructure:"route-bucket"`
	RouteKey    string `json:"route-key" mapstructure:"route-key"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Routing: genericoptions.NewRoutingOptions(),
		S3:      genericoptions.NewS3Options(),
		Log:     log.NewOptions(),

		StartLatitude:  47.6062,
		StartLongitude: -122.3321,
		Profile:        string(route.ProfileNormal),
	}
}

// AddFlags binds all option groups to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Routing.AddFlags(fs)
	o.S3.AddFlags(fs)
	o.Log.AddFlags(fs)

	fs.Float64Var(&o.StartLatitude, "start-latitude", o.StartLatitude, "Latitude of the route start point.")
	fs.Float64Var(&o.StartLongitude, "start-longitude", o.StartLongitude, "Longitude of the route start point.")
	fs.Float64Var(&o.DistanceMeters, "distance-meters", o.DistanceMeters, "Target route distance in meters. Zero picks one at random.")
	fs.StringVar(&o.Profile, "profile", o.Profile, "Driving profile: 'normal' or 'aggressive'.")

	fs.IntVar(&o.DTCTriggers, "dtc-triggers", o.DTCTriggers, "Number of diagnostic trouble codes to inject along the route.")
	fs.IntVar(&o.OilTempTriggers, "oiltemp-triggers", o.OilTempTriggers, "Number of high oil temperature events to inject along the route.")

	fs.StringVar(&o.SaveAs, "save-as", o.SaveAs, "Write the generated route to this local file.")
	fs.StringVar(&o.RouteBucket, "route-bucket", o.RouteBucket, "Upload the generated route to this object-store bucket.")
	fs.StringVar(&o.RouteKey, "route-key", o.RouteKey, "Object-store key for the uploaded route. Defaults to '<route name>.json'.")
}

// Validate checks the combined options.
func (o *Options) Validate() error {
	var errs []error

	errs = append(errs, o.Routing.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	if o.RouteBucket != "" {
		errs = append(errs, o.S3.Validate()...)
	}

	switch route.Profile(o.Profile) {
	case route.ProfileNormal, route.ProfileAggressive:
	default:
		errs = append(errs, fmt.Errorf("unknown profile %q", o.Profile))
	}

	if o.DTCTriggers < 0 || o.OilTempTriggers < 0 {
		errs = append(errs, errors.New("trigger counts must not be negative"))
	}
	if o.SaveAs == "" && o.RouteBucket == "" {
		errs = append(errs, errors.New("at least one of --save-as or --route-bucket is required"))
	}

	return errors.Join(errs...)
}

// Triggers converts the trigger counts into the route request form.
func (o *Options) Triggers() []route.Trigger {
	var triggers []route.Trigger
	if o.DTCTriggers > 0 {
		triggers = append(triggers, route.Trigger{Type: route.TriggerDTC, Occurrences: o.DTCTriggers})
	}
	if o.OilTempTriggers > 0 {
		triggers = append(triggers, route.Trigger{Type: route.TriggerOilTemp, Occurrences: o.OilTempTriggers})
	}
	return triggers
}
