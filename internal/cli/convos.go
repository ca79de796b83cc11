package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var convosCmd = &cobra.Command{
	Use:   "convos",
	Short: "Manage conversations",
}

var convosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recently modified first",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cleanup, err := buildManager(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := m.Initialize(cmd.Context()); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tMODIFIED")
		for _, c := range m.Conversations() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name,
				c.ModifiedTime.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var convosNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cleanup, err := buildManager(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := m.Initialize(cmd.Context()); err != nil {
			return err
		}
		convo, err := m.CreateConversation(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s)\n", convo.Name, convo.ID)
		return nil
	},
}

var convosRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(fmt.Sprintf("Delete conversation %s?", args[0])) {
			return nil
		}

		m, cleanup, err := buildManager(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := m.Initialize(cmd.Context()); err != nil {
			return err
		}
		if err := m.DeleteConversation(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	convosRmCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	convosCmd.AddCommand(convosListCmd, convosNewCmd, convosRmCmd)
}
