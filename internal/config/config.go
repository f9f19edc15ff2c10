// Package config loads the stagehand.yaml configuration file describing
// the coding-agent CLI profiles the harness can invoke.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file stagehand looks for in the
// working directory when --config is not given.
const DefaultFileName = "stagehand.yaml"

// Config is the stagehand.yaml configuration file.
type Config struct {
	Version        string                       `yaml:"version"`
	DefaultProfile string                       `yaml:"default_profile"`
	Profiles       []Profile                    `yaml:"profiles"`
	EnvProfiles    map[string]map[string]string `yaml:"env_profiles,omitempty"`
}

// Profile describes how to drive one external coding-agent CLI. The
// command-line syntax of the tool is configuration, not code: base command,
// fixed flags, resume flags, and the model-selection flag all live here.
type Profile struct {
	// Name identifies the profile ("kiro", "claude", ...).
	Name string `yaml:"name"`
	// Command is the base invocation, possibly with leading arguments
	// ("kiro-cli chat").
	Command string `yaml:"command"`
	// BaseParams are the fixed non-interactive/trust flags appended to
	// every invocation.
	BaseParams []string `yaml:"base_params,omitempty"`
	// ResumeParams are appended after BaseParams on follow-up invocations
	// (typically ["--resume"]).
	ResumeParams []string `yaml:"resume_params,omitempty"`
	// ModelFlag, when set, is emitted with the chosen model on initial and
	// follow-up invocations ("--model").
	ModelFlag string `yaml:"model_flag,omitempty"`
	// ConfigDir is the tool's directory under the user's home, used to
	// advertise a default config path (".kiro").
	ConfigDir string `yaml:"config_dir,omitempty"`
	// Install is the shell command that installs the tool. It runs only
	// when the executable is absent, keeping setup idempotent.
	Install string `yaml:"install,omitempty"`
	// AppendPrompt is extra text appended to every prompt sent to the tool.
	AppendPrompt string `yaml:"append_prompt,omitempty"`
}

// Executable returns the bare executable name from the profile's command.
func (p Profile) Executable() string {
	fields := strings.Fields(p.Command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// GenerateDefault creates a configuration with a single kiro profile.
func GenerateDefault() *Config {
	return &Config{
		Version:        "1.0",
		DefaultProfile: "kiro",
		Profiles: []Profile{
			{
				Name:         "kiro",
				Command:      "kiro-cli chat",
				BaseParams:   []string{"--no-interactive", "--trust-all-tools"},
				ResumeParams: []string{"--resume"},
				ModelFlag:    "--model",
				ConfigDir:    ".kiro",
				Install:      "curl -fsSL https://cli.kiro.dev/install | bash",
			},
		},
		EnvProfiles: map[string]map[string]string{},
	}
}

// Validate checks the configuration and returns user-friendly errors.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("configuration error: missing required field 'version'\n\nHint: Add a version field like:\n  version: \"1.0\"")
	}

	if len(c.Profiles) == 0 {
		return fmt.Errorf("configuration error: no profiles defined\n\nHint: Add at least one profile:\n  profiles:\n    - name: kiro\n      command: kiro-cli chat")
	}

	seen := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("configuration error: duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
	}

	if c.DefaultProfile != "" && !seen[c.DefaultProfile] {
		return fmt.Errorf("configuration error: default_profile %q does not match any profile", c.DefaultProfile)
	}

	return nil
}

// Validate checks a single profile.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("configuration error: profile with empty 'name' field")
	}
	if strings.TrimSpace(p.Command) == "" {
		return fmt.Errorf("configuration error: profile %q has empty 'command' field\n\nHint: Specify the CLI to run:\n  command: kiro-cli chat", p.Name)
	}
	return nil
}

// Profile returns the named profile, or the default profile when name is
// empty.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" && len(c.Profiles) == 1 {
		return c.Profiles[0], nil
	}
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}

// LoadFromFile loads a configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveToFile writes the configuration as YAML with 0600 permissions.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
