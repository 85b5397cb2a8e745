package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"medialib/internal/conversion"
	"medialib/internal/media"
	"medialib/internal/mediastore"
	"medialib/internal/regen"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Add and inspect media records",
	}
	mediaCmd.AddCommand(newMediaAddCommand(ctx))
	mediaCmd.AddCommand(newMediaListCommand(ctx))
	mediaCmd.AddCommand(newMediaShowCommand(ctx))
	return mediaCmd
}

func newMediaAddCommand(ctx *commandContext) *cobra.Command {
	var modelType string
	var modelID int64
	var collection string
	var diskName string
	var skipConversions bool

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Store a file as a media record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve file path: %w", err)
			}
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read %s: %w", source, err)
			}
			if strings.TrimSpace(diskName) == "" {
				diskName = cfg.Disks.Default
			}

			disks, err := ctx.disks(cmd.Context())
			if err != nil {
				return err
			}
			target, err := disks.Get(diskName)
			if err != nil {
				return err
			}

			return ctx.withStore(cmd.Context(), func(store mediastore.Repository) error {
				m, err := store.Add(cmd.Context(), &media.Media{
					ModelType:       modelType,
					ModelID:         modelID,
					CollectionName:  collection,
					FileName:        media.SanitizeFileName(source),
					Disk:            target.Name(),
					ConversionsDisk: cfg.Disks.Conversions,
					Size:            int64(len(data)),
				})
				if err != nil {
					return err
				}
				if err := target.Put(cmd.Context(), m.OriginalPath(), data, m.MimeType); err != nil {
					return fmt.Errorf("store original for media %s: %w", m.ID, err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added media %s (%s, %s)\n", m.ID, m.FileName, humanize.Bytes(uint64(m.Size)))
				if skipConversions {
					return nil
				}
				engine := conversion.NewManipulator(cfg.Conversions, disks, store, ctx.loggerValue())
				if err := engine.CreateDerivedFiles(cmd.Context(), m, conversion.Options{}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Conversions for media %s failed: %v\n", m.ID, err)
					return nil
				}
				if names := m.GeneratedConversionNames(); len(names) > 0 {
					fmt.Fprintf(out, "Generated conversions: %s\n", strings.Join(names, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&modelType, "model-type", "", "Type of the model that owns the media")
	cmd.Flags().Int64Var(&modelID, "model-id", 0, "Identifier of the owning model")
	cmd.Flags().StringVar(&collection, "collection", media.DefaultCollection, "Collection name")
	cmd.Flags().StringVar(&diskName, "disk", "", "Disk to store the original on (defaults to disks.default)")
	cmd.Flags().BoolVar(&skipConversions, "no-conversions", false, "Do not generate conversions after adding")
	_ = cmd.MarkFlagRequired("model-type")
	return cmd
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	var modelType string
	var ids []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List media records",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := regen.Criteria{ModelType: strings.TrimSpace(modelType), IDs: regen.ParseIDs(ids)}
			return ctx.withStore(cmd.Context(), func(store mediastore.Repository) error {
				records, err := regen.Resolve(cmd.Context(), store, criteria)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No media found")
					return nil
				}
				fmt.Fprintln(out, renderTable(mediaColumns, mediaRows(records), mediaFooter(records)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&modelType, "model-type", "", "Only list media owned by this model type")
	cmd.Flags().StringArrayVar(&ids, "ids", nil, "Only list these media ids (repeatable or comma separated)")
	return cmd
}

var mediaColumns = []column{
	{title: "ID", numeric: true},
	{title: "Model"},
	{title: "Collection"},
	{title: "File"},
	{title: "Disk"},
	{title: "Size", numeric: true},
	{title: "Conversions"},
}

func mediaFooter(records []*media.Media) []string {
	var total uint64
	for _, m := range records {
		if m.Size > 0 {
			total += uint64(m.Size)
		}
	}
	footer := make([]string, len(mediaColumns))
	footer[0] = humanize.Comma(int64(len(records))) + " media"
	footer[5] = humanize.Bytes(total)
	return footer
}

func mediaRows(records []*media.Media) [][]string {
	rows := make([][]string, 0, len(records))
	for _, m := range records {
		conversions := strings.Join(m.GeneratedConversionNames(), ", ")
		if conversions == "" {
			conversions = "-"
		}
		rows = append(rows, []string{
			m.ID,
			fmt.Sprintf("%s #%d", m.ModelType, m.ModelID),
			m.CollectionName,
			m.FileName,
			m.Disk,
			humanize.Bytes(uint64(m.Size)),
			conversions,
		})
	}
	return rows
}

func newMediaShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one media record and its conversions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), func(store mediastore.Repository) error {
				m, err := store.Get(cmd.Context(), args[0])
				if errors.Is(err, mediastore.ErrNotFound) {
					return fmt.Errorf("media %s not found", args[0])
				}
				if err != nil {
					return err
				}
				engine := conversion.NewManipulator(cfg.Conversions, nil, nil, nil)
				for _, line := range describeMedia(m, engine, isTerminal(cmd.OutOrStdout())) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
}

func describeMedia(m *media.Media, engine *conversion.Manipulator, colorize bool) []string {
	lines := renderHeading("Media "+m.ID, colorize)
	lines = append(lines,
		renderField("Name", m.Name),
		renderField("File", m.FileName),
		renderField("MIME type", m.MimeType),
		renderField("Size", humanize.Bytes(uint64(m.Size))),
		renderField("Owner", m.ModelType+" #"+strconv.FormatInt(m.ModelID, 10)),
		renderField("Collection", m.CollectionName),
		renderField("Disk", m.Disk),
		renderField("Conversions disk", m.TargetConversionsDisk()),
		renderField("UUID", m.UUID),
		renderField("Added", humanize.Time(m.CreatedAt)),
		"",
	)
	lines = append(lines, renderHeading("Conversions", colorize)...)
	applicable := engine.Applicable(m, conversion.Options{})
	if len(applicable) == 0 {
		return append(lines, fieldIndent+"none configured")
	}
	for _, conv := range applicable {
		path := m.ConversionPath(conv.Name, conversion.OutputExtension(conv, m.FileName))
		switch {
		case !m.IsImage():
			lines = append(lines, renderMarked(conv.Name, markSkipped, "not an image", colorize))
		case m.HasGeneratedConversion(conv.Name):
			lines = append(lines, renderMarked(conv.Name, markDone, path, colorize))
		default:
			lines = append(lines, renderMarked(conv.Name, markMissing, "", colorize))
		}
	}
	return lines
}
