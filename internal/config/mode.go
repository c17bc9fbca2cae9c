package config

import "fmt"

// Mode selects which backend the client targets
type Mode string

const (
	ModeMock Mode = "mock"
	ModeReal Mode = "real"
	ModeAuto Mode = "auto"
)

// ValidModes lists all valid modes
var ValidModes = []Mode{ModeMock, ModeReal, ModeAuto}

// IsValid checks if a mode string is valid
func (m Mode) IsValid() bool {
	for _, valid := range ValidModes {
		if m == valid {
			return true
		}
	}
	return false
}

// ParseMode parses a mode string into a Mode, returning an error if invalid
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid mode %q, valid modes: %v", s, ValidModes)
	}
	return mode, nil
}

// Environment is the process environment the client runs in
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// ParseEnvironment parses an environment name. Empty means development.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case "":
		return EnvDevelopment, nil
	case EnvDevelopment, EnvProduction, EnvTest:
		return Environment(s), nil
	}
	return "", fmt.Errorf("invalid environment %q", s)
}

// Resolve maps auto onto mock or real for the given environment
func (m Mode) Resolve(env Environment) Mode {
	if m != ModeAuto {
		return m
	}
	if env == EnvDevelopment {
		return ModeMock
	}
	return ModeReal
}

// MockingEnabled reports whether requests should be served by the mock backend
func MockingEnabled(mode Mode, env Environment) bool {
	return mode == ModeMock || (mode == ModeAuto && env == EnvDevelopment)
}
