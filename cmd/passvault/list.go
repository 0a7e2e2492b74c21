package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"passvault/pkg/vault"
)

var listShowSecrets bool

func init() {
	listCmd.Flags().BoolVar(&listShowSecrets, "show", false, "Print decrypted passwords")
}

// listCmd prints all accounts, highest priority first. Secrets are masked
// unless --show is given; records that failed to decrypt keep their marker
// either way.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}

		accounts, err := v.ListAccounts()
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSERVICE\tUSERNAME\tPRIORITY\tCATEGORY\tPASSWORD")
		for _, acc := range accounts {
			password := "********"
			if listShowSecrets || acc.Password == vault.CorruptMarker {
				password = acc.Password
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				acc.ID, acc.ServiceName, acc.Username,
				acc.Priority, acc.Category, password)
		}
		return w.Flush()
	},
}
