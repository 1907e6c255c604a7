// Package config holds the suite configuration.
//
// Values come from a YAML file, SUITEGEN_* environment variables and
// command-line flags bound by the caller, in increasing precedence. Keys
// are case-insensitive; nested map keys such as specific_profiles entries
// are lowercased on load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"

	"github.com/gofhir/suitegen/pkg/definition"
	"github.com/gofhir/suitegen/pkg/metadata"
)

const (
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "SUITEGEN"
	// DefaultFile is read when no config file is given and it exists.
	DefaultFile = "suitegen.yaml"
)

// Defaults.
const (
	DefaultDefinitionFilter = definition.DefaultFilterExpression
	DefaultContainerType    = metadata.DefaultContainerType
	DefaultCompositionType  = metadata.DefaultCompositionType
	DefaultStaticTemplate   = "static_validation"
)

// StaticTest is one fixed check generated once per version root.
type StaticTest struct {
	ID          string `mapstructure:"id"`
	ClassName   string `mapstructure:"class_name"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Template    string `mapstructure:"template"`
	// Profile is a key of Config.SpecificProfiles.
	Profile string `mapstructure:"profile"`
}

// Config is the suite configuration.
type Config struct {
	OutputPath        string `mapstructure:"output_path"`
	IGsPath           string `mapstructure:"igs_path"`
	Version           string `mapstructure:"version"`
	TestKitModuleName string `mapstructure:"test_kit_module_name"`
	TestModuleName    string `mapstructure:"test_module_name"`
	TestIDPrefix      string `mapstructure:"test_id_prefix"`
	// TestSuiteClassName prefixes section test and aggregator class names.
	TestSuiteClassName string `mapstructure:"test_suite_class_name"`

	SuiteID          string `mapstructure:"suite_id"`
	SuiteTitle       string `mapstructure:"suite_title"`
	SuiteDescription string `mapstructure:"suite_description"`
	TxServerURL      string `mapstructure:"tx_server_url"`

	SpecificProfiles map[string]string `mapstructure:"specific_profiles"`
	StaticTests      []StaticTest      `mapstructure:"static_tests"`

	DefinitionFilter string `mapstructure:"definition_filter"`
	ContainerType    string `mapstructure:"container_type"`
	CompositionType  string `mapstructure:"composition_type"`
}

// DefaultConfig returns the configuration used before any source is read.
func DefaultConfig() *Config {
	return &Config{
		OutputPath:       ".",
		DefinitionFilter: DefaultDefinitionFilter,
		ContainerType:    DefaultContainerType,
		CompositionType:  DefaultCompositionType,
	}
}

// scalarKeys are the keys environment variables may override. Viper only
// consults the environment for keys it already knows.
var scalarKeys = []string{
	"output_path", "igs_path", "version",
	"test_kit_module_name", "test_module_name", "test_id_prefix", "test_suite_class_name",
	"suite_id", "suite_title", "suite_description", "tx_server_url",
	"definition_filter", "container_type", "composition_type",
}

// NewViper returns a Viper instance carrying the defaults and the
// environment binding. Callers bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	for _, key := range scalarKeys {
		v.SetDefault(key, "")
	}
	v.SetDefault("output_path", defaults.OutputPath)
	v.SetDefault("definition_filter", defaults.DefinitionFilter)
	v.SetDefault("container_type", defaults.ContainerType)
	v.SetDefault("composition_type", defaults.CompositionType)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path into v and decodes the result. An
// empty path reads DefaultFile when it exists and only defaults otherwise.
// A given path that does not exist is an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	case fileExists(DefaultFile):
		v.SetConfigFile(DefaultFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", DefaultFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for i := range cfg.StaticTests {
		if cfg.StaticTests[i].Template == "" {
			cfg.StaticTests[i].Template = DefaultStaticTemplate
		}
	}
	return &cfg, nil
}

// Validate reports every missing required field and every static test
// whose profile key is not in SpecificProfiles.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output_path is required"))
	}
	if c.IGsPath == "" {
		errs = append(errs, errors.New("igs_path is required"))
	}
	if c.TestIDPrefix == "" {
		errs = append(errs, errors.New("test_id_prefix is required"))
	}
	for i, st := range c.StaticTests {
		if st.ID == "" || st.ClassName == "" {
			errs = append(errs, fmt.Errorf("static_tests[%d]: id and class_name are required", i))
		}
		if st.Profile == "" {
			continue
		}
		if _, ok := c.SpecificProfiles[strings.ToLower(st.Profile)]; !ok {
			errs = append(errs, fmt.Errorf("static_tests[%d]: profile %q is not a specific_profiles key", i, st.Profile))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}

// ProfileURL returns the canonical URL of the specific profile key.
func (c *Config) ProfileURL(key string) string {
	return c.SpecificProfiles[strings.ToLower(key)]
}

// ModuleName returns the version-scoped module name of generated tests.
func (c *Config) ModuleName(version Version) string {
	return c.TestModuleName + version.Suffix
}

// Version is a resolved version label.
type Version struct {
	Label  string // Directory name, e.g. "v1.1.0"
	Suffix string // Module name suffix, e.g. "V110"
}

// ParseVersion resolves a version label. Semantic versions, with or without
// a leading "v", normalize to "v<major>.<minor>.<patch>[-<pre>]". Anything
// else keeps the raw label, and its suffix is the label's letters and digits
// upper-cased.
func ParseVersion(raw string) Version {
	raw = strings.TrimSpace(raw)
	sv, err := semver.NewVersion(raw)
	if err != nil {
		return Version{Label: raw, Suffix: alnumUpper(raw)}
	}
	suffix := fmt.Sprintf("V%d%d%d", sv.Major(), sv.Minor(), sv.Patch())
	return Version{
		Label:  "v" + sv.String(),
		Suffix: suffix + alnumUpper(sv.Prerelease()),
	}
}

// ResolveVersion returns the configured version, or the version of the
// package being generated when none is configured.
func (c *Config) ResolveVersion(packageVersion string) Version {
	if c.Version != "" {
		return ParseVersion(c.Version)
	}
	return ParseVersion(packageVersion)
}

func alnumUpper(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
