package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"passvault/pkg/vault"
)

var (
	addUsername string
	addPriority string
	addCategory string
	addNotes    string
)

func init() {
	addCmd.Flags().StringVarP(&addUsername, "username", "u", "", "Account username")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "Low", "Priority: High, Medium, Low")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category (default: Other)")
	addCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "Free-form notes")
}

// addCmd stores a new account; the secret is prompted, never passed as an
// argument, so it stays out of the shell history.
var addCmd = &cobra.Command{
	Use:   "add [service]",
	Short: "Add an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}

		password, err := readSecret("Account password: ")
		if err != nil {
			return err
		}

		acc, err := v.AddAccount(vault.NewAccount{
			ServiceName: args[0],
			Username:    addUsername,
			Password:    password,
			Priority:    vault.ParsePriority(addPriority),
			Category:    addCategory,
			Notes:       addNotes,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Added %s (%s)\n", acc.ServiceName, acc.ID)
		return nil
	},
}
