package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		Timer           string `yaml:"timer"`
		TTL             string `yaml:"ttl"`
		DefaultQuestion string `yaml:"defaultQuestion"`
	} `yaml:"quiz"`
	Notify struct {
		Kind     string `yaml:"kind"` // http or amqp; empty disables notifications
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"notify"`
	Identity struct {
		File string `yaml:"file"`
	} `yaml:"identity"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns an empty config when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	return cfg, err
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// TimerSeconds converts the quiz.timer duration into whole countdown seconds.
func (c Config) TimerSeconds() int {
	d := TTLDuration(c.Quiz.Timer, 30*time.Second)
	if secs := int(d / time.Second); secs > 0 {
		return secs
	}
	return 30
}
