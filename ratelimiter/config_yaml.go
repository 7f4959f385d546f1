package ratelimiter

import (
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig mirrors Config with durations as strings, matching the
// breaker package's round-trip approach for the same §8 law.
type yamlConfig struct {
	Name               string `yaml:"name"`
	LimitForPeriod     int    `yaml:"limit_for_period"`
	LimitRefreshPeriod string `yaml:"limit_refresh_period"`
	TimeoutDuration    string `yaml:"timeout_duration"`
}

func (c *Config) MarshalYAML() (interface{}, error) {
	return yamlConfig{
		Name:               c.Name,
		LimitForPeriod:     c.LimitForPeriod,
		LimitRefreshPeriod: c.LimitRefreshPeriod.String(),
		TimeoutDuration:    c.TimeoutDuration.String(),
	}, nil
}

// UnmarshalYAML implements yaml.v3's Unmarshaler (node-based, not the
// yaml.v2 callback style).
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw yamlConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}
	refresh, err := time.ParseDuration(orZero(raw.LimitRefreshPeriod))
	if err != nil {
		return err
	}
	timeout, err := time.ParseDuration(orZero(raw.TimeoutDuration))
	if err != nil {
		return err
	}
	c.Name = raw.Name
	c.LimitForPeriod = raw.LimitForPeriod
	c.LimitRefreshPeriod = refresh
	c.TimeoutDuration = timeout
	return nil
}

func orZero(s string) string {
	if s == "" {
		return "0s"
	}
	return s
}
