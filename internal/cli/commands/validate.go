package commands

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/propschema/codec"
	"github.com/reoring/propschema/compiler"
)

// NewValidateCommand creates the validate command
func NewValidateCommand(st *state) *cobra.Command {
	var report bool
	cmd := &cobra.Command{
		Use:   "validate SCHEMA RECORD",
		Short: "Validate a record against property definitions",
		Long: `Load property definitions from SCHEMA and a record from RECORD, then
run the compiled rules. Exits with status 1 when the record is invalid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, sdata, err := readFile(args[0])
			if err != nil {
				return err
			}
			b, err := codec.DecodeBuilder(sf, sdata)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			rf, rdata, err := readFile(args[1])
			if err != nil {
				return err
			}
			record, err := codec.DecodeRecord(rf, rdata)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			s := compiler.New(compiler.WithLogger(st.logger)).AddBuilder(b)
			res, err := s.Validate(record)
			if err != nil {
				return err
			}
			st.logger.Info("record validated",
				zap.String("schema", args[0]),
				zap.String("record", args[1]),
				zap.Bool("valid", res.Valid),
				zap.Int("fields_with_errors", len(res.Errors)))

			out := cmd.OutOrStdout()
			if report {
				enc, err := codec.Encode(st.format(), map[string]any{"valid": res.Valid, "errors": res.Errors})
				if err != nil {
					return err
				}
				if _, err := out.Write(append(enc, '\n')); err != nil {
					return err
				}
			} else if res.Valid {
				color.New(color.FgGreen, color.Bold).Fprintln(out, "✓ valid")
			} else {
				fieldColor := color.New(color.FgRed, color.Bold)
				msgColor := color.New(color.FgRed)
				fields := make([]string, 0, len(res.Errors))
				for f := range res.Errors {
					fields = append(fields, f)
				}
				sort.Strings(fields)
				for _, f := range fields {
					fieldColor.Fprintf(out, "✗ %s\n", f)
					for _, m := range res.Errors[f] {
						msgColor.Fprintf(out, "    %s\n", m)
					}
				}
			}
			if !res.Valid {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "print {valid, errors} in the output format instead of text")
	return cmd
}
