package main

import (
	"github.com/spf13/cobra"
	"go.appointy.com/party/example/cows"
	"go.appointy.com/party/introspection"
	"go.uber.org/zap"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the introspection result of the barn schema as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Load(configPath)
			if err != nil {
				return err
			}

			schema, err := cows.NewSchema(cows.NewBarn(cfg.Barn.Color), zap.NewNop())
			if err != nil {
				return err
			}
			out, err := introspection.ComputeSchemaJSON(cmd.Context(), *schema)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}
}
