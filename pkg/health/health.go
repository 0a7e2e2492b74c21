// Package health computes the password-health report: reuse, weakness, and
// breach classification across the full account set.
package health

import (
	"context"
	"unicode"

	"passvault/pkg/breach"
	"passvault/pkg/vault"
)

// AccountSource lists accounts with decrypted secrets.
type AccountSource interface {
	ListAccounts() ([]vault.Account, error)
}

// Oracle reports breach counts per distinct secret.
type Oracle interface {
	CheckAll(ctx context.Context, secrets []string) map[string]int
}

// Buckets tallies the three mutually exclusive classifications.
type Buckets struct {
	Strong int `json:"strong"`
	Reused int `json:"reused"`
	Weak   int `json:"weak"`
}

// Report is the health summary, computed fresh on each request. Stats and
// Chart apply the same exclusive precedence (reused over weak over strong)
// so they always agree.
type Report struct {
	Total int     `json:"total"`
	Stats Buckets `json:"stats"`
	Chart Buckets `json:"chart"`
}

// Analyzer aggregates reuse, local weakness, and breach signals.
type Analyzer struct {
	accounts AccountSource
	oracle   Oracle
}

// New creates an analyzer over an account source and a breach oracle.
func New(accounts AccountSource, oracle Oracle) *Analyzer {
	return &Analyzer{accounts: accounts, oracle: oracle}
}

// Analyze classifies every account.
//
// An account is reused when its secret, or its (username, secret) pair,
// occurs more than once. It is weak when the secret fails the local check
// (shorter than 8, no digit, or no letter) or has a confirmed breach count.
// Classification is exclusive: reused wins over weak, weak over strong.
// Accounts whose secret is empty or undecryptable are counted in Total but
// not classified.
func (a *Analyzer) Analyze(ctx context.Context) (*Report, error) {
	accounts, err := a.accounts.ListAccounts()
	if err != nil {
		return nil, err
	}

	report := &Report{Total: len(accounts)}

	secretCounts := make(map[string]int)
	pairCounts := make(map[pairKey]int)
	var distinct []string
	for _, acc := range accounts {
		secret := acc.Password
		if !classifiable(secret) {
			continue
		}
		secretCounts[secret]++
		if secretCounts[secret] == 1 {
			distinct = append(distinct, secret)
		}
		pairCounts[pairKey{acc.Username, secret}]++
	}

	breachCounts := a.oracle.CheckAll(ctx, distinct)

	for _, acc := range accounts {
		secret := acc.Password
		if !classifiable(secret) {
			continue
		}

		reused := secretCounts[secret] > 1 || pairCounts[pairKey{acc.Username, secret}] > 1
		// An unreachable oracle (-1) degrades to not-leaked.
		leaked := breachCounts[secret] > 0
		weak := isLocallyWeak(secret) || leaked

		switch {
		case reused:
			report.Stats.Reused++
			report.Chart.Reused++
		case weak:
			report.Stats.Weak++
			report.Chart.Weak++
		default:
			report.Stats.Strong++
			report.Chart.Strong++
		}
	}

	return report, nil
}

// pairKey detects reuse at (username, secret) granularity.
type pairKey struct {
	username string
	secret   string
}

// classifiable filters out empty and undecryptable secrets.
func classifiable(secret string) bool {
	return secret != "" && secret != vault.CorruptMarker
}

// isLocallyWeak applies the fixed local weakness rule: shorter than 8
// characters, missing a digit, or missing a letter.
func isLocallyWeak(secret string) bool {
	if len(secret) < 8 {
		return true
	}
	hasDigit := false
	hasLetter := false
	for _, r := range secret {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	return !hasDigit || !hasLetter
}

// compile-time check that the breach client satisfies Oracle.
var _ Oracle = (*breach.Client)(nil)
