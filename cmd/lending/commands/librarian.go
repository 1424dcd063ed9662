package commands

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/features/identity"
)

func librarianCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "librarian",
		Short: "Manage librarians",
	}

	cmd.AddCommand(librarianCreateCmd())

	return cmd
}

// librarianCreateCmd bootstraps a librarian account, e.g. the first one of a fresh install.
func librarianCreateCmd() *cobra.Command {
	var command identity.RegisterLibrarianCommand

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a librarian",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := buildServices()
			if err != nil {
				return err
			}

			person, err := services.Identity.RegisterLibrarian(cmd.Context(), command)
			if err != nil {
				return err
			}

			return printJSON(cmd, person)
		},
	}

	cmd.Flags().StringVar(&command.Name, "name", "", "full name")
	cmd.Flags().StringVar(&command.Email, "email", "", "login email")
	cmd.Flags().StringVar(&command.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&command.EmployeeNumber, "employee-number", "", "employee number")

	for _, name := range []string{"name", "email", "password", "employee-number"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
