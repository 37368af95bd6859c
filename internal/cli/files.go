package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage uploaded files",
}

var filesLsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List stored files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		files, total, err := newClient().ListFiles(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tSIZE\tTYPE")
		for _, f := range files {
			fmt.Fprintf(w, "%s\t%d\t%s\n", f.Path, f.Size, f.ContentType)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", total)
		return nil
	},
}

var uploadContentType string

var filesUploadCmd = &cobra.Command{
	Use:   "upload <local-file> [remote-path]",
	Short: "Upload a local file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := args[0]
		remote := filepath.Base(local)
		if len(args) == 2 {
			remote = args[1]
		}
		f, err := os.Open(local)
		if err != nil {
			return err
		}
		defer f.Close()

		stored, err := newClient().UploadFile(cmd.Context(), remote, uploadContentType, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", stored.Path, stored.Size)
		return nil
	},
}

var filesGetCmd = &cobra.Command{
	Use:   "get <remote-path> [local-file]",
	Short: "Download a stored file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := newClient().DownloadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := filepath.Base(args[0])
		if len(args) == 2 {
			out = args[1]
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(content))
		return nil
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <remote-path>",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteFile(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted")
		return nil
	},
}

func init() {
	filesUploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "MIME type of the upload")
	filesCmd.AddCommand(filesLsCmd, filesUploadCmd, filesGetCmd, filesRmCmd)
}
