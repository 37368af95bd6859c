package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store an access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		tokens, err := newAnonClient().Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := saveToken(tokens.AccessToken, tokens.ExpiresAt); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in, token valid until %s\n", tokens.ExpiresAt.Local())
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an admin account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		id, err := newAnonClient().Register(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered user %s\n", id)
		return nil
	},
}

var passwordFlag string

func init() {
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&passwordFlag, "password", "", "password (prompted when omitted)")
}

func readPassword(cmd *cobra.Command) (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "password: ")
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
