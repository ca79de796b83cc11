package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google and store the Drive token",
	RunE: func(cmd *cobra.Command, args []string) error {
		session := newAuthSession()
		if err := session.SignIn(cmd.Context()); err != nil {
			return err
		}

		profile, err := session.Profile(cmd.Context())
		if err != nil {
			// The token is saved; a failed profile lookup only costs
			// the greeting.
			fmt.Println("Signed in.")
			return nil
		}
		fmt.Printf("Signed in as %s <%s>\n", profile.Name, profile.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the stored token and sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newAuthSession().SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}
