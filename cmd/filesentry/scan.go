package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/filesentry/filesentry/pkg/threat"
)

func newScanCmd() *cobra.Command {
	var uploadedBy string

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a file and print the unified security result",
		Long: `Scan reads the file at path, runs the full threat and PII detection
pipeline with in-memory collaborators, executes the decided response actions,
and prints the unified result as JSON. Exit code is 1 when the file was
blocked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			orchestrator, closer, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer closer()

			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			metadata := threat.FileMetadata{
				ID:         uuid.New().String(),
				Name:       filepath.Base(path),
				Size:       int64(len(content)),
				UploadedBy: uploadedBy,
			}

			result := orchestrator.ScanAndRespond(cmd.Context(), content, metadata, "cli")

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}

			if result.Blocked() {
				fmt.Fprintf(cmd.ErrOrStderr(), "blocked: %s\n", result.Summary)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&uploadedBy, "uploaded-by", "", "actor to record as the uploader")
	return cmd
}
