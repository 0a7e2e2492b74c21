package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

// deleteCmd removes an account by id.
var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}

		if !deleteForce && !confirm(fmt.Sprintf("Delete account %s?", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := v.DeleteAccount(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}
