package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	propschema "github.com/reoring/propschema"
	"github.com/reoring/propschema/codec"
	"github.com/reoring/propschema/kubeopenapi"
)

// NewImportCommand creates the import command
func NewImportCommand(st *state) *cobra.Command {
	var kind, name string
	var strict bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Convert a Kubernetes CRD or OpenAPI v3 schema into property definitions",
		Long: `Read an OpenAPI v3 object schema (JSON or YAML), a CustomResourceDefinition,
or a multi-document CRD bundle, and print the equivalent property definitions.
Use --kind or --name to pick a CRD out of a bundle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" && name != "" {
				return fmt.Errorf("--kind and --name are mutually exclusive")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts := kubeopenapi.Options{Strict: strict}

			var (
				b    *propschema.PropertyBuilder
				diag kubeopenapi.Diag
			)
			switch {
			case kind != "":
				b, diag, err = kubeopenapi.ImportYAMLForCRDKind(data, kind, opts)
			case name != "":
				b, diag, err = kubeopenapi.ImportYAMLForCRDName(data, name, opts)
			case strings.HasSuffix(strings.ToLower(args[0]), ".json"):
				b, diag, err = kubeopenapi.Import(data, opts)
			default:
				b, diag, err = kubeopenapi.ImportYAML(data, opts)
			}
			if err != nil {
				return err
			}

			warnColor := color.New(color.FgYellow)
			for _, w := range diag.Warnings() {
				warnColor.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			st.logger.Debug("schema imported",
				zap.String("file", args[0]),
				zap.Int("properties", b.Len()),
				zap.Int("warnings", len(diag.Warnings())))

			out, err := codec.EncodeBuilder(st.format(), b)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "import the CRD with this spec.names.kind from a bundle")
	cmd.Flags().StringVar(&name, "name", "", "import the CRD with this metadata.name from a bundle")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unsupported keywords instead of warning")
	return cmd
}
