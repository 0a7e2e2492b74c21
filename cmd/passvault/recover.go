package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"passvault/pkg/vault"
)

// questionCmd prints the stored recovery question.
var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Show the recovery question",
	RunE: func(cmd *cobra.Command, args []string) error {
		question, err := v.RecoveryQuestion()
		if err != nil {
			return err
		}
		if question == "" {
			return fmt.Errorf("no recovery question configured; run 'passvault setup' first")
		}
		fmt.Println(question)
		return nil
	},
}

// recoverCmd resets the master passphrase via the recovery answer.
var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Reset the master passphrase using the recovery answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		question, err := v.RecoveryQuestion()
		if err != nil {
			return err
		}
		if question == "" {
			return fmt.Errorf("no recovery question configured; run 'passvault setup' first")
		}
		fmt.Printf("Recovery question: %s\n", question)

		answer, err := readSecret("Answer: ")
		if err != nil {
			return err
		}
		passphrase, err := readSecret("New master passphrase: ")
		if err != nil {
			return err
		}
		repeat, err := readSecret("Confirm new master passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != repeat {
			return fmt.Errorf("passphrases do not match")
		}

		err = v.ResetViaRecovery(answer, passphrase)
		switch {
		case errors.Is(err, vault.ErrWeakSecret):
			return fmt.Errorf("passphrase too weak: use at least 8 characters with an upper-case letter, a lower-case letter, and a digit")
		case errors.Is(err, vault.ErrInvalidRecoveryAnswer):
			return fmt.Errorf("recovery answer does not match")
		case err != nil:
			return err
		}

		fmt.Println("Master passphrase reset.")
		return nil
	},
}
