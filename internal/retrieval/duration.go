package retrieval

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written in configuration files as "90s",
// "10m" or "2h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("retrieval.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d Duration) Validate() error {
	if duration := time.Duration(d); duration <= 0 {
		return fmt.Errorf("retrieval.Duration: must be positive: %s", duration)
	}
	return nil
}

// Seconds returns the duration in seconds.
func (d Duration) Seconds() float64 {
	return time.Duration(d).Seconds()
}

func (d Duration) String() string {
	duration := time.Duration(d)
	if duration%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(duration/time.Hour))
	} else if duration%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(duration/time.Minute))
	} else {
		return fmt.Sprintf("%ds", int(duration/time.Second))
	}
}
