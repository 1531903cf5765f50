package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aidetect/internal/infra/extract"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze a text, .pdf or .docx file and print the result as JSON",
	Long: `Analyze a document without running the server.

Examples:
  aidetect analyze essay.txt
  aidetect analyze report.pdf
  cat essay.txt | aidetect analyze -
  aidetect analyze --text "some text that is at least fifty characters long..."`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		if text == "" {
			if len(args) == 0 {
				return fmt.Errorf("a file argument or --text is required")
			}
			var err error
			text, err = readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
		}

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.svc.Analyze(cmd.Context(), text)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"result":    out.Record,
			"fromCache": out.FromCache,
		})
	},
}

func init() {
	analyzeCmd.Flags().String("text", "", "text to analyze instead of a file")
}

func readInput(stdin io.Reader, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return extract.Text(filepath.Base(arg), mime.TypeByExtension(filepath.Ext(arg)), data)
}
