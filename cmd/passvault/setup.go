package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"passvault/pkg/vault"
)

// setupCmd configures the master passphrase and recovery question.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up the vault with a master passphrase and recovery question",
	RunE: func(cmd *cobra.Command, args []string) error {
		configured, err := v.IsConfigured()
		if err != nil {
			return err
		}
		if configured {
			if !confirm("The vault is already set up. Replace the master passphrase?") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		passphrase, err := readSecret("Master passphrase: ")
		if err != nil {
			return err
		}
		repeat, err := readSecret("Confirm master passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != repeat {
			return fmt.Errorf("passphrases do not match")
		}

		question, err := readLine("Recovery question: ")
		if err != nil {
			return err
		}
		answer, err := readSecret("Recovery answer: ")
		if err != nil {
			return err
		}

		err = v.Setup(passphrase, question, answer)
		if errors.Is(err, vault.ErrWeakSecret) {
			return fmt.Errorf("passphrase too weak: use at least 8 characters with an upper-case letter, a lower-case letter, and a digit")
		}
		if err != nil {
			return err
		}

		fmt.Println("Vault configured.")
		return nil
	},
}
