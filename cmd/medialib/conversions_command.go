package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"medialib/internal/config"
)

func newConversionsCommand(ctx *commandContext) *cobra.Command {
	conversionsCmd := &cobra.Command{
		Use:   "conversions",
		Short: "Inspect configured conversions",
	}
	conversionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				conversionColumns,
				conversionRows(cfg.Conversions),
				nil,
			))
			return nil
		},
	})
	return conversionsCmd
}

var conversionColumns = []column{
	{title: "Name"},
	{title: "Size", numeric: true},
	{title: "Fit"},
	{title: "Format"},
	{title: "Quality", numeric: true},
	{title: "Filters"},
	{title: "Model types"},
	{title: "Collections"},
}

func conversionRows(conversions []config.Conversion) [][]string {
	rows := make([][]string, 0, len(conversions))
	for _, conv := range conversions {
		format := conv.Format
		if format == "" {
			format = "original"
		}
		rows = append(rows, []string{
			conv.Name,
			fmt.Sprintf("%sx%s", dimension(conv.Width), dimension(conv.Height)),
			conv.Fit,
			format,
			strconv.Itoa(conv.Quality),
			conversionFilters(conv),
			listOrAny(conv.ModelTypes),
			listOrAny(conv.Collections),
		})
	}
	return rows
}

func dimension(v int) string {
	if v <= 0 {
		return "auto"
	}
	return strconv.Itoa(v)
}

func conversionFilters(conv config.Conversion) string {
	var filters []string
	if conv.Grayscale {
		filters = append(filters, "grayscale")
	}
	if conv.Blur > 0 {
		filters = append(filters, "blur "+strconv.FormatFloat(conv.Blur, 'g', -1, 64))
	}
	if conv.Sharpen > 0 {
		filters = append(filters, "sharpen "+strconv.FormatFloat(conv.Sharpen, 'g', -1, 64))
	}
	if len(filters) == 0 {
		return "-"
	}
	return strings.Join(filters, ", ")
}

func listOrAny(values []string) string {
	if len(values) == 0 {
		return "any"
	}
	return strings.Join(values, ", ")
}
