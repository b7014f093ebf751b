package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/maskfield/internal/config"
	"github.com/zjrosen/maskfield/internal/log"
	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/preset"
	"github.com/zjrosen/maskfield/internal/tracing"
)

var applyCmd = &cobra.Command{
	Use:   "apply [values...]",
	Short: "Mask values and print their canonical form",
	Long: `Apply a mask to each argument, or to each line of stdin when no
arguments are given, and print the canonical values one per line.

The mask comes from --preset, from --template and friends, or from both
(explicit options override the preset).`,
	Example: `  maskfield apply --preset phone 9041487623
  maskfield apply --template 99:99 --placeholder hh:mm 0930 1745
  cat numbers.txt | maskfield apply --preset card --diff`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringP("preset", "p", "", "preset name (see 'maskfield presets')")
	applyCmd.Flags().StringP("template", "t", "", "mask template, e.g. 99/99/9999")
	applyCmd.Flags().String("placeholder", "", "mask placeholder, same length as the template")
	applyCmd.Flags().String("filler", "", "rune for unfilled slots when no placeholder is given")
	applyCmd.Flags().StringToString("token", nil, "explicit literal by offset, e.g. --token 0=$")
	applyCmd.Flags().String("validate", "", "regular expression canonical values must match")
	applyCmd.Flags().String("strip", "", "characters removed from input before masking")
	applyCmd.Flags().Bool("diff", false, "show how each input was edited")
	applyCmd.Flags().Bool("trace", false, "record spans even if tracing is disabled in config")
}

// applyResult is the outcome for one input value.
type applyResult struct {
	Raw       string
	Value     string
	Complete  bool
	Truncated bool
	Rejected  bool
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fc, err := applyFieldConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.ValidateFields([]config.FieldConfig{fc}); err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	m, strip, err := reg.Mask(ctx, fc)
	if err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 {
		inputs, err = readLines(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	tc := tracing.FromConfig(cfg.Tracing)
	if force, _ := cmd.Flags().GetBool("trace"); force {
		tc.Enabled = true
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}()

	results := applyAll(ctx, provider.Tracer(), fc.Preset, m, strip, inputs)

	showDiff, _ := cmd.Flags().GetBool("diff")
	rejected := printResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, showDiff)
	if rejected > 0 {
		return fmt.Errorf("%d of %d values rejected", rejected, len(results))
	}
	return nil
}

// applyFieldConfig turns the mask flags into a field definition so apply
// resolves presets exactly like the form does.
func applyFieldConfig(cmd *cobra.Command) (config.FieldConfig, error) {
	fc := config.FieldConfig{Name: "apply"}
	fc.Preset, _ = cmd.Flags().GetString("preset")
	fc.Template, _ = cmd.Flags().GetString("template")
	fc.Placeholder, _ = cmd.Flags().GetString("placeholder")
	fc.Filler, _ = cmd.Flags().GetString("filler")
	fc.Tokens, _ = cmd.Flags().GetStringToString("token")
	fc.Validate, _ = cmd.Flags().GetString("validate")
	fc.PasteStrip, _ = cmd.Flags().GetString("strip")

	if fc.Preset == "" && fc.Template == "" && len(fc.Tokens) == 0 {
		return fc, fmt.Errorf("one of --preset, --template or --token is required")
	}
	return fc, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// applyAll masks every input under one batch span.
func applyAll(ctx context.Context, tracer trace.Tracer, presetName string, m *mask.Mask, strip string, inputs []string) []applyResult {
	ctx, batch := tracing.StartBatch(ctx, tracer, presetName, m.Template(), len(inputs))
	defer batch.End()

	filter := preset.StripFilter(strip)
	results := make([]applyResult, 0, len(inputs))
	for _, raw := range inputs {
		_, span := tracing.StartValue(ctx, tracer, raw)
		res := applyOne(m, filter(raw))
		res.Raw = raw
		tracing.EndValue(span, res.Value, res.Complete, res.Truncated, res.Rejected)
		results = append(results, res)
	}
	return results
}

func applyOne(m *mask.Mask, input string) applyResult {
	value, ok := m.Set(input)
	if !ok {
		return applyResult{Rejected: true}
	}

	// Token splicing alone shows how long the value would be without the
	// template cutting it.
	spliced := mask.Apply(input, "", m.Tokens())
	template := utf8.RuneCountInString(m.Template())
	return applyResult{
		Value:     m.Normalize(value),
		Complete:  m.IsComplete(value),
		Truncated: template > 0 && utf8.RuneCountInString(spliced) > template,
	}
}

// printResults writes values to out and problems to errOut. It returns the
// number of rejected values.
func printResults(out, errOut io.Writer, results []applyResult, showDiff bool) int {
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed)

	rejected := 0
	for _, res := range results {
		if res.Rejected {
			rejected++
			_, _ = bad.Fprintf(errOut, "rejected: %s\n", res.Raw)
			continue
		}

		if showDiff {
			_, _ = fmt.Fprintln(out, renderDiff(res.Raw, res.Value))
		} else {
			_, _ = fmt.Fprintln(out, res.Value)
		}
		if res.Truncated {
			_, _ = warn.Fprintf(errOut, "truncated: %s\n", res.Raw)
		}
	}
	return rejected
}

// renderDiff shows the edits that turned raw into value: inserted literals
// in green, dropped runes in red.
func renderDiff(raw, value string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(raw, value, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed, color.CrossedOut)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString(added.Sprint(d.Text))
		case diffmatchpatch.DiffDelete:
			sb.WriteString(removed.Sprint(d.Text))
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
