package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"passvault/pkg/vault"
)

// exportCmd writes the decrypted accounts to a JSON file. The passphrase is
// re-verified by the export itself, so no prior unlock is needed here.
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all accounts to an unencrypted JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Warning: the export file contains plaintext passwords.")
		passphrase, err := readSecret("Master passphrase: ")
		if err != nil {
			return err
		}

		err = v.ExportAccounts(args[0], passphrase)
		if locked, ok := vault.IsLocked(err); ok {
			return fmt.Errorf("too many failed attempts; locked for %d more seconds", locked.RemainingSeconds)
		}
		if errors.Is(err, vault.ErrInvalidCredentials) {
			return fmt.Errorf("invalid master passphrase; nothing was exported")
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

// importCmd loads accounts from a JSON export, skipping entries that match
// an existing service and username pair.
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import accounts from a JSON export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}

		count, err := v.ImportAccounts(args[0])
		if err != nil {
			if count > 0 {
				fmt.Printf("Imported %d accounts before the failure.\n", count)
			}
			return err
		}

		fmt.Printf("Imported %d new accounts.\n", count)
		return nil
	},
}
