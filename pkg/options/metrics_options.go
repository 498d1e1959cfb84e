package options

import (
	"github.com/spf13/pflag"
)

var _ IOptions = (*MetricsOptions)(nil)

// MetricsOptions configures the optional Prometheus endpoint of a simulator
// process.
type MetricsOptions struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	BindAddress string `json:"bind-address" mapstructure:"bind-address"`
}

func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{
		Enabled:     false,
		BindAddress: ":9090",
	}
}

func (o *MetricsOptions) Validate() []error {
	return nil
}

func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "metrics.enabled", o.Enabled, "Expose Prometheus metrics over HTTP.")
	fs.StringVar(&o.BindAddress, "metrics.bind-address", o.BindAddress, "Address for the metrics HTTP listener.")
}
