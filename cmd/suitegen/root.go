package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gofhir/suitegen/pkg/config"
	"github.com/gofhir/suitegen/pkg/logger"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	quiet   bool

	v      *viper.Viper
	log    *logger.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.NewViper(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "suitegen",
		Short: "Generate validation tests from FHIR summary document guides",
		Long: `suitegen reads FHIR implementation guide packages that profile a summary
document (a Bundle whose first entry is a Composition), extracts the entries
and coded sections they define, and writes one test file per section, per
entry and per configured static check, plus the groups and suite tying them
together.

Configuration is read from ./suitegen.yaml or --config, SUITEGEN_* environment
variables and flags.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			a.setupLogging()
		},
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "disable log output")

	root.AddCommand(a.newGenerateCmd())
	root.AddCommand(a.newInspectCmd())
	root.AddCommand(a.newVersionCmd())
	return root
}

func (a *app) setupLogging() {
	level := logger.LevelInfo
	switch {
	case a.quiet:
		level = logger.LevelNone
	case a.verbose:
		level = logger.LevelDebug
	}
	a.log = logger.New(a.stderr, level)
	logger.SetDefault(a.log)
}

// loadConfig reads the configuration with any flags already bound to a.v.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return nil, err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("using config file %s", used)
	}
	return cfg, nil
}
