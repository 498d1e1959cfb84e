// Package job runs the device side of over-the-air update jobs: it receives
// job notifications and walks each job through its status lifecycle,
// reporting every step over MQTT.
package job

// Operations the device knows how to execute. Anything else is reported
// failed immediately.
const (
	OpOTAUpdate      = "OtaUpdate"
	OpUpdateFirmware = "updateFirmware"
)

// Status is the custom status vocabulary published to the fleet backend.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "inProgress"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Native job-service statuses, published on the device job-state topic.
const (
	NativeQueued     = "QUEUED"
	NativeInProgress = "IN_PROGRESS"
	NativeSucceeded  = "SUCCEEDED"
	NativeFailed     = "FAILED"
)

// Document is the work order attached to a job.
type Document struct {
	Operation      string `json:"operation"`
	DesiredVersion string `json:"desiredVersion"`
}

// Job is one work item received on the job-notify topic.
type Job struct {
	ID       string   `json:"jobId"`
	Document Document `json:"document"`
	Status   string   `json:"status,omitempty"`
}

// StatusUpdate is the custom per-step report published on the job-update
// topic.
type StatusUpdate struct {
	Operation       string `json:"operation"`
	ReportedVersion string `json:"reportedVersion"`
	JobID           string `json:"jobId"`
	Status          Status `json:"status"`
	VIN             string `json:"vin"`
	DeviceID        string `json:"deviceId"`
	Timestamp       string `json:"timestamp"`
}

// StateUpdate is the native-style report published on the device job-state
// topic.
type StateUpdate struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
