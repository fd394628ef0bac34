package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/extractor"
	"github.com/reglet-dev/reglet-forms/parser"
	"github.com/reglet-dev/reglet-forms/template"
)

type grantsOutput struct {
	Required   capability.GrantSet  `yaml:"required"`
	Components []componentGrants    `yaml:"components,omitempty"`
	Principal  string               `yaml:"principal,omitempty"`
	Missing    *capability.GrantSet `yaml:"missing,omitempty"`
}

type componentGrants struct {
	Kind                string `yaml:"kind"`
	ID                  string `yaml:"id"`
	capability.GrantSet `yaml:",inline"`
}

func newGrantsCommand(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "grants",
		Short: "List the capabilities and features the loaded documents require",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, rf)
			if err != nil {
				return err
			}

			extractors := extractor.NewRegistry()
			extractor.RegisterDefaultExtractors(extractors)
			loader := parser.NewFileLoader(parser.WithTemplate(template.NewGoEngine(), cfg.TemplateVars()))

			var out grantsOutput
			for _, path := range cfg.Documents {
				doc, err := loader.Read(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				rep := extractors.ExtractDocument(doc)
				out.Required.Merge(&rep.Total)
				for _, req := range rep.Components {
					out.Components = append(out.Components, componentGrants{
						Kind:     string(req.Kind),
						ID:       req.ID,
						GrantSet: req.Grants,
					})
				}
			}
			out.Required.Deduplicate()

			if cfg.Principal.GrantsFile != "" {
				p, err := loadPrincipal(cfg.Principal)
				if err != nil {
					return err
				}
				missing := (&extractor.Report{Total: out.Required}).Missing(p)
				out.Principal = p.Name()
				out.Missing = &missing
			}

			data, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
