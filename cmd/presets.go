package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/preset"
	"github.com/zjrosen/maskfield/internal/ui/shared/markdown"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in and configured presets",
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().Bool("raw", false, "print the markdown source")
}

func runPresets(cmd *cobra.Command, _ []string) error {
	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	md := presetsMarkdown(reg.All())

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		_, err := io.WriteString(cmd.OutOrStdout(), md)
		return err
	}

	r, err := markdown.New(100, cfg.UI.MarkdownStyle)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering presets: %w", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func presetsMarkdown(presets []preset.Preset) string {
	var builtin, configured [][]string
	for _, p := range presets {
		// The compiled mask shows what a field would display, derived
		// tokens included.
		m := mask.Compile(mask.Options{Template: p.Template, Placeholder: p.Placeholder, Tokens: p.Tokens, Filler: p.Filler})
		row := []string{p.Name, p.Template, m.Placeholder(), formatTokens(m.Tokens().Map()), p.Description}
		if p.Builtin {
			builtin = append(builtin, row)
		} else {
			configured = append(configured, row)
		}
	}

	headers := []string{"Name", "Template", "Placeholder", "Tokens", "Description"}
	code := []bool{false, true, true, true, false}

	var sb strings.Builder
	sb.WriteString("# Presets\n\n## Built-in\n\n")
	sb.WriteString(markdown.Table(headers, code, builtin))
	if len(configured) > 0 {
		sb.WriteString("\n## Configured\n\n")
		sb.WriteString(markdown.Table(headers, code, configured))
	}
	return sb.String()
}

// formatTokens prints a token table as offset="literal" pairs.
func formatTokens(tokens map[int]string) string {
	if len(tokens) == 0 {
		return ""
	}
	offsets := make([]int, 0, len(tokens))
	for off := range tokens {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)

	parts := make([]string, len(offsets))
	for i, off := range offsets {
		parts[i] = strconv.Itoa(off) + "=" + strconv.Quote(tokens[off])
	}
	return strings.Join(parts, " ")
}
