package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login [username-or-email]",
	Short: "Log in and store the session",
	Long: `Log in with a username or email. The password is read from --password,
or from the first line of standard input when the flag is absent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("--password is required")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		resp := client.Login(cmd.Context(), args[0], password)
		if !resp.Success {
			return apiError(resp)
		}

		status := client.AuthStatus()
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (expires %s)\n", args[0], status.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := client.CurrentUser(cmd.Context())
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}

		if output == "json" {
			return printJSON(cmd.OutOrStdout(), resp.Data)
		}
		u := resp.Data
		printTable(cmd.OutOrStdout(), []string{"ID", "USERNAME", "EMAIL", "ROLE"}, [][]string{{u.ID, u.Username, u.Email, u.Role}})
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := client.AuthStatus()
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), status)
		}

		w := cmd.OutOrStdout()
		if !status.IsAuthenticated {
			fmt.Fprintln(w, "Not logged in")
			return nil
		}
		fmt.Fprintln(w, "Logged in")
		if status.Subject != "" {
			fmt.Fprintf(w, "Subject:  %s\n", status.Subject)
		}
		fmt.Fprintf(w, "Expires:  %s\n", status.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (read from stdin when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statusCmd)
}
