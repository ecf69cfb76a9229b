package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"editorial-cms/document"
	"editorial-cms/draft"
	"editorial-cms/models"
)

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "docctl",
		Short:        "docctl - inspect article bodies and draft snapshots",
		SilenceUsage: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)

	root.AddCommand(newPreviewCmd(), newRenderCmd(), newSnapshotCmd())
	return root
}

// readInput reads the named file, or stdin when no file is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// parseBody parses a serialized body. With strict set a malformed body is
// an error instead of the empty document.
func parseBody(cmd *cobra.Command, args []string, strict bool) (document.Document, error) {
	raw, err := readInput(cmd, args)
	if err != nil {
		return document.Document{}, err
	}
	parsed := document.Parse(string(raw))
	if parsed.Fallback {
		if strict {
			return document.Document{}, fmt.Errorf("malformed body: %w", parsed.Cause)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: malformed body, using empty document: %v\n", parsed.Cause)
	}
	return parsed.Document, nil
}

func newPreviewCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Print the listing summary of a serialized body",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseBody(cmd, args, strict)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), document.ExtractPreview(doc))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a malformed body")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Print the sanitized HTML of a serialized body",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseBody(cmd, args, strict)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), document.Render(doc))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a malformed body")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Encode or decode preview snapshot tokens",
	}

	decode := &cobra.Command{
		Use:   "decode <token>",
		Short: "Print the snapshot carried by a token as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := draft.DecodeSnapshot(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}

	encode := &cobra.Command{
		Use:   "encode [file]",
		Short: "Print the token for a JSON snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var snap draft.Snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return fmt.Errorf("parse snapshot: %w", err)
			}
			if snap.Status == "" {
				snap.Status = models.StatusDraft
			}
			token, err := draft.EncodeSnapshot(snap)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.AddCommand(decode, encode)
	return cmd
}
