package main

import (
	"github.com/spf13/cobra"

	"github.com/gofhir/suitegen/pkg/generator"
)

func (a *app) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the test suite from every configured package",
		Example: `  suitegen generate
  suitegen generate --igs ./igs --output ./lib/ips_test_kit --version v1.1.0`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runGenerate()
		},
	}

	flags := cmd.Flags()
	flags.String("igs", "", "directory or glob of package .tgz files (igs_path)")
	flags.String("output", "", "output root (output_path)")
	flags.String("version", "", "version label of the generated suite (version)")
	_ = a.v.BindPFlag("igs_path", flags.Lookup("igs"))
	_ = a.v.BindPFlag("output_path", flags.Lookup("output"))
	_ = a.v.BindPFlag("version", flags.Lookup("version"))

	return cmd
}

func (a *app) runGenerate() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := generator.New(cfg, generator.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := g.Run(); err != nil {
		return err
	}

	s := g.Stats().Snapshot()
	a.log.Info("generated %d package(s): %d section, %d entry, %d static, %d group and %d suite file(s) in %s",
		s.Packages, s.Sections, s.Entries, s.Static, s.Groups, s.Suites, s.Elapsed)
	return nil
}
