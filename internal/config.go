// Package internal holds the application configuration shared by every
// command.
package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Tree    TreeConfig        `yaml:"tree"`
	Build   BuildConfig       `yaml:"build"`
	Preview PreviewConfig     `yaml:"preview"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Tree.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
		return err
	}
	return c.Preview.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// TreeConfig holds the path to the content tree root.
type TreeConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// BuildConfig holds build pipeline configuration. Both directories are
// relative to the tree root.
type BuildConfig struct {
	TemplatesDir string `yaml:"templates_dir"`
	OutDir       string `yaml:"out_dir"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TemplatesDir, validation.Required),
		validation.Field(&c.OutDir, validation.Required),
	)
}

// PreviewConfig holds the preview server configuration.
type PreviewConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server listen address.
func (c *PreviewConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Tree: TreeConfig{
			Root: ".",
		},
		Build: BuildConfig{
			TemplatesDir: "templates",
			OutDir:       "out",
		},
		Preview: PreviewConfig{
			Port: 8080,
		},
	}
}
