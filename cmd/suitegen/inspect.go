package main

import (
	"github.com/spf13/cobra"

	"github.com/gofhir/suitegen/pkg/generator"
	"github.com/gofhir/suitegen/pkg/loader"
	"github.com/gofhir/suitegen/pkg/metadata"
)

func (a *app) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <package>",
		Short: "Print the metadata extracted from one package",
		Long: `inspect extracts the entries and sections of one package and prints them as
YAML. Nothing is written. The package is a .tgz file, an unpacked package
directory or a name#version already in the local FHIR package cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runInspect(args[0])
		},
	}
}

func (a *app) runInspect(ref string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	pkg, err := loader.NewLoader("").Load(ref)
	if err != nil {
		return err
	}

	g, err := generator.New(cfg, generator.WithLogger(a.log))
	if err != nil {
		return err
	}
	entries, err := g.Extract(pkg)
	if err != nil {
		return err
	}

	data, err := metadata.MarshalSnapshot(entries)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(data)
	return err
}
