package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"medialib/internal/confirm"
	"medialib/internal/conversion"
	"medialib/internal/logging"
	"medialib/internal/mediastore"
	"medialib/internal/regen"
)

const regenerateLockName = "regenerate.lock"

func newRegenerateCommand(ctx *commandContext) *cobra.Command {
	var ids []string
	var only []string
	var force bool
	var onlyMissing bool

	cmd := &cobra.Command{
		Use:   "regenerate [modelType]",
		Short: "Regenerate the derived files of media",
		Long: `Regenerate the derived files (conversions) of stored media.

Without arguments every media record is regenerated. A model type limits the
run to media owned by that type; --ids selects records by id and takes
precedence over the model type. Ids may be repeated or comma separated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			for _, name := range only {
				if !slices.Contains(cfg.ConversionNames(), name) {
					return fmt.Errorf("unknown conversion %q (configured: %v)", name, cfg.ConversionNames())
				}
			}

			criteria := regen.Criteria{IDs: regen.ParseIDs(ids)}
			if len(args) > 0 {
				criteria.ModelType = args[0]
			}

			stderr := cmd.ErrOrStderr()
			if !confirm.New(cfg, force, cmd.InOrStdin(), stderr).ConfirmToProceed() {
				return nil
			}

			lockPath := filepath.Join(cfg.Paths.DataDir, regenerateLockName)
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire regenerate lock: %w", err)
			}
			if !ok {
				return errors.New("another regenerate run is already in progress")
			}
			defer func() { _ = lock.Unlock() }()

			logger := ctx.loggerValue()
			runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())

			disks, err := ctx.disks(runCtx)
			if err != nil {
				return err
			}

			return ctx.withStore(runCtx, func(store mediastore.Repository) error {
				r := &regen.Regenerator{
					Store:  store,
					Engine: conversion.NewManipulator(cfg.Conversions, disks, store, logger),
					NewProgress: func(total int) regen.Progress {
						return newProgress(stderr, total)
					},
					Out:     cmd.OutOrStdout(),
					Options: conversion.Options{Only: only, OnlyMissing: onlyMissing},
					Logger:  logger,
				}
				_, err := r.Execute(runCtx, criteria)
				return err
			})
		},
	}

	cmd.Flags().StringArrayVar(&ids, "ids", nil, "Regenerate specific media ids (repeatable or comma separated)")
	cmd.Flags().BoolVar(&force, "force", false, "Force the operation to run when in a protected environment")
	cmd.Flags().StringArrayVar(&only, "only", nil, "Regenerate only the named conversion (repeatable)")
	cmd.Flags().BoolVar(&onlyMissing, "only-missing", false, "Regenerate only conversions that are missing")
	return cmd
}
