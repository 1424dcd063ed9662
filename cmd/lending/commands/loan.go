package commands

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

func loanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Inspect and administer loans",
	}

	cmd.AddCommand(loanShowCmd(), loanStateCmd())

	return cmd
}

func loanShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <loan-id>",
		Short: "Print a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			services, err := buildServices()
			if err != nil {
				return err
			}

			loan, err := services.Loans.GetLoan(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printJSON(cmd, loan)
		},
	}
}

func loanStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <loan-id> <IN_PROGRESS|CANCELLED|RETURNED>",
		Short: "Move a loan to another state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			target := lending.LoanState(strings.ToUpper(strings.TrimSpace(args[1])))

			services, err := buildServices()
			if err != nil {
				return err
			}

			loan, err := services.Loans.ChangeState(cmd.Context(), id, target)
			if err != nil {
				return err
			}

			return printJSON(cmd, loan)
		},
	}
}
