package gsm

import "github.com/achomutovskij/deviceservice/internal/device"

// InfoUnavailable fills every capability field when no source knows a device.
const InfoUnavailable = "INFO UNAVAILABLE"

// Details is the capability record of one device model.
type Details struct {
	Technology  string `json:"technology"`
	TwoGBands   string `json:"twoGBands"`
	ThreeGBands string `json:"threeGBands"`
	FourGBands  string `json:"fourGBands"`
}

// Unavailable returns a record with every field set to InfoUnavailable.
func Unavailable() Details {
	return Details{
		Technology:  InfoUnavailable,
		TwoGBands:   InfoUnavailable,
		ThreeGBands: InfoUnavailable,
		FourGBands:  InfoUnavailable,
	}
}

// EnrichedDevice is a device together with its capabilities.
// Both embedded structs are flattened into one JSON object.
type EnrichedDevice struct {
	device.Device
	Details
}

// Source names the tier that produced a capability record.
type Source string

// Enrichment sources.
const (
	SourceRemote      Source = "remote"
	SourceDataset     Source = "dataset"
	SourceUnavailable Source = "unavailable"
)

// Logger defines the logging interface used in this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
