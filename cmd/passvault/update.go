package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"passvault/pkg/vault"
)

var (
	updateService  string
	updateUsername string
	updatePriority string
	updateCategory string
	updateNotes    string
	updatePassword bool
)

func init() {
	updateCmd.Flags().StringVarP(&updateService, "service", "s", "", "New service name")
	updateCmd.Flags().StringVarP(&updateUsername, "username", "u", "", "New username")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "New priority: High, Medium, Low")
	updateCmd.Flags().StringVarP(&updateCategory, "category", "c", "", "New category")
	updateCmd.Flags().StringVarP(&updateNotes, "notes", "n", "", "New notes")
	updateCmd.Flags().BoolVar(&updatePassword, "password", false, "Prompt for a new password")
}

// updateCmd changes an account in place. Only the fields given as flags are
// replaced; the rest carry over from the stored record.
var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}

		accounts, err := v.ListAccounts()
		if err != nil {
			return err
		}
		var acc *vault.Account
		for i := range accounts {
			if accounts[i].ID == args[0] {
				acc = &accounts[i]
				break
			}
		}
		if acc == nil {
			return fmt.Errorf("no account with id %s", args[0])
		}
		if acc.Password == vault.CorruptMarker && !updatePassword {
			return fmt.Errorf("stored password is unreadable; re-run with --password to set a new one")
		}

		if cmd.Flags().Changed("service") {
			acc.ServiceName = updateService
		}
		if cmd.Flags().Changed("username") {
			acc.Username = updateUsername
		}
		if cmd.Flags().Changed("priority") {
			acc.Priority = vault.ParsePriority(updatePriority)
		}
		if cmd.Flags().Changed("category") {
			acc.Category = updateCategory
		}
		if cmd.Flags().Changed("notes") {
			acc.Notes = updateNotes
		}
		if updatePassword {
			password, err := readSecret("New account password: ")
			if err != nil {
				return err
			}
			acc.Password = password
		}

		if err := v.UpdateAccount(*acc); err != nil {
			return err
		}

		fmt.Printf("Updated %s\n", acc.ServiceName)
		return nil
	},
}
