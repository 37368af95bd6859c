// Package cli implements the folioctl admin client commands.
package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamensky/folio/internal/client"
	"github.com/kamensky/folio/internal/fetch"
)

var (
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "folioctl",
	Short: "folioctl manages portfolio content on a folio server",
	Long: `folioctl is the admin client for the folio collection store.

It keeps a login token under the user config directory and talks to the
server's JSON API. Run 'folioctl login <username>' first.`,
	SilenceUsage: true,
}

func init() {
	def := os.Getenv("FOLIO_SERVER")
	if def == "" {
		def = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "server base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(loginCmd, registerCmd)
	rootCmd.AddCommand(projectsCmd, experiencesCmd, skillsCmd, resumesCmd, filesCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ---- token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "folio")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "folio")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// newClient builds an authenticated API client for the configured server.
func newClient() *client.Client {
	f := fetch.New(serverURL,
		fetch.WithToken(loadToken),
		fetch.WithCache(fetch.NewCache()),
		fetch.WithTimeout(timeout),
	)
	return client.New(f)
}

// newAnonClient builds a client without a token source, for login/register.
func newAnonClient() *client.Client {
	f := fetch.New(serverURL, fetch.WithTimeout(timeout))
	return client.New(f)
}
