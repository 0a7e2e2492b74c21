package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// loginCmd verifies the master passphrase without touching any accounts.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the master passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}
		fmt.Println("Passphrase verified.")
		return nil
	},
}
