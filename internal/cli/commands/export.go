package commands

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/propschema/codec"
	"github.com/reoring/propschema/compiler"
	"github.com/reoring/propschema/jsonschema"
)

// NewExportCommand creates the export command
func NewExportCommand(st *state) *cobra.Command {
	var standard, check bool
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Print the compiled schema document",
		Long: `Load property definitions from FILE and print the compiled document
({type: object, properties, required}). With --standard the document is
converted to draft 2020-12 JSON Schema; --check also verifies it against the
metaschema.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, data, err := readFile(args[0])
			if err != nil {
				return err
			}
			b, err := codec.DecodeBuilder(f, data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			s := compiler.New(compiler.WithLogger(st.logger)).AddBuilder(b)
			st.logger.Debug("schema compiled", zap.String("file", args[0]), zap.Int("properties", b.Len()))

			var out any = s.ToArray()
			if standard || check {
				js := jsonschema.FromDocument(s.ToArray())
				if check {
					if _, err := jsonschema.Compile(js); err != nil {
						return err
					}
				}
				if out, err = plain(js); err != nil {
					return err
				}
			}
			enc, err := codec.Encode(st.format(), out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(enc, '\n'))
			return err
		},
	}
	cmd.Flags().BoolVar(&standard, "standard", false, "emit standard JSON Schema")
	cmd.Flags().BoolVar(&check, "check", false, "verify the standard JSON Schema against the metaschema (implies --standard)")
	return cmd
}

// plain round-trips v through JSON so YAML and TOML encoders see the JSON
// field names.
func plain(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
