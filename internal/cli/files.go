package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Rrens/knowledge-drive/internal/domain"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage knowledge files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge files",
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
		fmt.Fprintln(w, "ID\tNAME\tTYPE")
		for _, f := range m.KnowledgeFiles() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Name, f.MimeType)
		}
		return w.Flush()
	},
}

var filesAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Upload a .txt or .pdf file to the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var mimeType string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt":
			mimeType = domain.MimeText
		case ".pdf":
			mimeType = domain.MimePDF
		default:
			return fmt.Errorf("%w: only .txt and .pdf files are supported", domain.ErrUnsupportedFileType)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		m, cleanup, err := buildManager(cmd.Context(), printPhase)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := m.Initialize(cmd.Context()); err != nil {
			return err
		}
		if err := m.UploadDocument(cmd.Context(), filepath.Base(path), data, mimeType); err != nil {
			return err
		}
		fmt.Println("Uploaded.")
		return nil
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a knowledge file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(fmt.Sprintf("Delete file %s?", args[0])) {
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
		if err := m.DeleteKnowledgeFile(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	filesRmCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	filesCmd.AddCommand(filesListCmd, filesAddCmd, filesRmCmd)
}
