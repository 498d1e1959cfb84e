package topic

import (
	"fmt"
)

// Constants defining the standard topic segments. These act as the wire
// contract between the simulated devices and the telemetry backend; changing
// them breaks every consumer of the stream.
const (
	// SuffixCarData is the periodic telemetry topic (Device -> Cloud).
	// Structure: {root}/{deviceID}/cardata
	SuffixCarData = "cardata"

	// SuffixDTC is the diagnostic-trouble-code topic, published only on fault
	// state change (Device -> Cloud).
	// Structure: {root}/{deviceID}/dtc
	SuffixDTC = "dtc"

	// SuffixTrip is the end-of-journey summary topic, published exactly once
	// per trip (Device -> Cloud).
	// Structure: {root}/{deviceID}/trip
	SuffixTrip = "trip"

	// SuffixRoute is the one-time route announcement topic (Device -> Cloud).
	// Structure: {root}/{deviceID}/route
	SuffixRoute = "route"

	// SuffixJobNotify is the job delivery topic (Cloud -> Device).
	// Structure: {root}/{deviceID}/job/notify
	SuffixJobNotify = "job/notify"
)

// DefaultRoot is the base namespace shared with the original CVRA ingest
// pipeline.
const DefaultRoot = "dt/cvra"

// Builder constructs the device-scoped MQTT topic strings.
type Builder struct {
	root string
}

// NewBuilder creates a Builder with the given root namespace. An empty root
// falls back to DefaultRoot.
func NewBuilder(root string) *Builder {
	if root == "" {
		root = DefaultRoot
	}
	return &Builder{root: root}
}

// CarData returns the telemetry topic for a device.
func (b *Builder) CarData(deviceID string) string {
	return b.build(deviceID, SuffixCarData)
}

// DTC returns the fault-code topic for a device.
func (b *Builder) DTC(deviceID string) string {
	return b.build(deviceID, SuffixDTC)
}

// Trip returns the trip-summary topic for a device.
func (b *Builder) Trip(deviceID string) string {
	return b.build(deviceID, SuffixTrip)
}

// Route returns the route-announcement topic for a device.
func (b *Builder) Route(deviceID string) string {
	return b.build(deviceID, SuffixRoute)
}

// JobNotify returns the topic on which the backend delivers job descriptors to
// a device.
func (b *Builder) JobNotify(deviceID string) string {
	return b.build(deviceID, SuffixJobNotify)
}

// JobUpdate returns the device-scoped status topic for one job.
// Result: {root}/{deviceID}/job/{jobID}/update
func (b *Builder) JobUpdate(deviceID, jobID string) string {
	return fmt.Sprintf("%s/%s/job/%s/update", b.root, deviceID, jobID)
}

// JobState returns the broker-native job tracking topic, mirroring the managed
// job subsystem's succeeded/inProgress/failed primitives.
// Result: $devices/{deviceID}/jobs/{jobID}/update
func (b *Builder) JobState(deviceID, jobID string) string {
	return fmt.Sprintf("$devices/%s/jobs/%s/update", deviceID, jobID)
}

// CarDataWildcard returns the filter matching telemetry from ALL devices.
// Result: {root}/+/cardata
func (b *Builder) CarDataWildcard() string {
	return b.build("+", SuffixCarData)
}

func (b *Builder) build(deviceID, suffix string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, deviceID, suffix)
}
