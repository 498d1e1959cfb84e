package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*RoutingOptions)(nil)

// RoutingOptions configures the external driving-directions service used by
// route generation.
type RoutingOptions struct {
	BaseURL     string        `json:"base-url" mapstructure:"base-url"`
	AccessToken string        `json:"access-token" mapstructure:"access-token"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
}

func NewRoutingOptions() *RoutingOptions {
	return &RoutingOptions{
		BaseURL: "https://api.mapbox.com",
		Timeout: 30 * time.Second,
	}
}

func (o *RoutingOptions) Validate() []error {
	errs := []error{}

	if o.BaseURL == "" {
		errs = append(errs, errors.New("routing base-url is required"))
	}
	if o.AccessToken == "" {
		errs = append(errs, errors.New("routing access-token is required"))
	}

	return errs
}

func (o *RoutingOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.BaseURL, "routing.base-url", o.BaseURL, "Base URL of the driving-directions service.")
	fs.StringVar(&o.AccessToken, "routing.access-token", o.AccessToken, "Access token for the driving-directions service.")
	fs.DurationVar(&o.Timeout, "routing.timeout", o.Timeout, "HTTP timeout for directions queries.")
}
