package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Harsh275110/StoreIt/models"
)

// NewUserCmd creates the user command
func NewUserCmd(dataDirectory *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(
		newResetPasswordCmd(dataDirectory),
	)

	return cmd
}

func newResetPasswordCmd(dataDirectory *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [email] [new-password]",
		Short: "Reset a user's password",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			email := args[0]
			newPassword := args[1]

			withDB(dataDirectory, cmd, func() error {
				if err := models.ResetUserPassword(email, newPassword); err != nil {
					return err
				}
				cmd.Printf("Password reset successfully for user '%s'\n", email)
				return nil
			})
		},
	}
}
