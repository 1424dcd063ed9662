package commands

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the loan summary report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := buildServices()
			if err != nil {
				return err
			}

			summary, err := services.Reports.Summary(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd, summary)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
