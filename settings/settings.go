package settings

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/oomph-ac/momentum/hull"
	"github.com/oomph-ac/momentum/simulation"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// Settings contains everything that can be configured for a simulation.
type Settings struct {
	Logging struct {
		// Level is the minimum level of the messages logged.
		Level string
	}
	Simulation simulation.Config
	Hull       hull.Config
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	settings := Settings{}
	settings.Logging.Level = logrus.InfoLevel.String()
	settings.Simulation = simulation.DefaultConfig()
	settings.Hull = hull.DefaultConfig()
	return settings
}

// Validate returns an error if the settings cannot be used. Hull settings out of their range are
// clamped instead.
func (s Settings) Validate() (Settings, error) {
	if _, err := logrus.ParseLevel(s.Logging.Level); err != nil {
		return s, fmt.Errorf("invalid log level: %v", err)
	}
	if s.Simulation.TickRate <= 0 {
		return s, fmt.Errorf("tick rate must be positive, got %d", s.Simulation.TickRate)
	}
	if s.Simulation.HistorySize <= 0 {
		return s, fmt.Errorf("history size must be positive, got %d", s.Simulation.HistorySize)
	}
	s.Hull = s.Hull.Sanitise()
	return s, nil
}

// LogLevel returns the configured log level, or logrus.InfoLevel if it is invalid.
func (s Settings) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(s.Logging.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %v", err)
		} else if err := ioutil.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %v", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if the file does not exist
// or holds invalid settings.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %v", err)
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %v", err)
	}
	return settings.Validate()
}
