package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"passvault/internal/config"
	"passvault/pkg/vault"
)

var (
	cfg *config.Config
	v   *vault.Vault
)

var rootCmd = &cobra.Command{
	Use:   "passvault",
	Short: "passvault is a local, encrypted credential vault",
	Long:  `A local credential vault with master-passphrase protection, encrypted storage, and password health analysis.`,
	// PersistentPreRunE opens the vault before any subcommand runs.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		v, err = vault.Open(cfg.VaultDir, logger)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if v == nil {
			return nil
		}
		return v.Close()
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(questionCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(auditCmd)
}

// readSecret prompts for a secret without echoing it.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(value), nil
}

// readLine prompts for a single visible line.
func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// unlock prompts for the master passphrase and verifies it, translating
// vault errors into user-facing messages.
func unlock() error {
	configured, err := v.IsConfigured()
	if err != nil {
		return err
	}
	if !configured {
		return fmt.Errorf("vault is not set up; run 'passvault setup' first")
	}

	passphrase, err := readSecret("Master passphrase: ")
	if err != nil {
		return err
	}

	err = v.Login(passphrase)
	if locked, ok := vault.IsLocked(err); ok {
		return fmt.Errorf("too many failed attempts; locked for %d more seconds", locked.RemainingSeconds)
	}
	return err
}

// confirm asks a yes/no question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	fmt.Scanln(&answer)
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
