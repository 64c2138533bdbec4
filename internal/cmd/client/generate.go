package client

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
	"github.com/spf13/cobra"
)

// NewGenerateCommand constructs the `generate` command.
func NewGenerateCommand() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("count")
			format, _ := cmd.Flags().GetString("format")
			tmplText, _ := cmd.Flags().GetString("template")

			if n <= 0 {
				return fmt.Errorf("count must be positive, got %d", n)
			}
			var tmpl *template.Template
			switch format {
			case "string", "inspect", "raw":
			case "template":
				if tmplText == "" {
					return fmt.Errorf("--template is required with --format template")
				}
				t, err := template.New("id").Parse(tmplText)
				if err != nil {
					return fmt.Errorf("invalid --template: %w", err)
				}
				tmpl = t
			default:
				return fmt.Errorf("invalid --format; use string|inspect|raw|template")
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			for i := 0; i < n; i++ {
				id, err := ksuid.New()
				if err != nil {
					return err
				}
				switch format {
				case "string":
					_, _ = fmt.Fprintln(out, id.String())
				case "inspect":
					_ = enc.Encode(detailsOf(id))
				case "raw":
					_, _ = out.Write(id.Bytes())
				case "template":
					if err := tmpl.Execute(out, templateDataOf(id)); err != nil {
						return err
					}
					_, _ = io.WriteString(out, "\n")
				}
			}
			return nil
		},
	}
	generateCmd.Flags().IntP("count", "n", 1, "How many ids to generate")
	generateCmd.Flags().StringP("format", "f", "string", "Output format: string|inspect|raw|template")
	generateCmd.Flags().StringP("template", "t", "", "text/template rendered per id with --format template")
	return generateCmd
}

// NewInspectCommand constructs the `inspect` command.
func NewInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect <id> [<id>...]",
		Short: "Decode ids and print their parts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one id is required")
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, arg := range args {
				id, err := ksuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("parse %q: %w", arg, err)
				}
				_ = enc.Encode(detailsOf(id))
			}
			return nil
		},
	}
	return inspectCmd
}
