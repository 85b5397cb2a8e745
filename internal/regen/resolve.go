package regen

import (
	"context"
	"fmt"
	"log/slog"

	"medialib/internal/logging"
	"medialib/internal/media"
)

// MediaStore is the lookup surface a pass needs.
type MediaStore interface {
	All(ctx context.Context) ([]*media.Media, error)
	GetByIDs(ctx context.Context, ids []string) ([]*media.Media, error)
	GetByModelType(ctx context.Context, modelType string) ([]*media.Media, error)
}

// Resolve returns the records selected by criteria in store order.
func Resolve(ctx context.Context, store MediaStore, criteria Criteria) ([]*media.Media, error) {
	return resolve(ctx, store, criteria, logging.NewNop())
}

func resolve(ctx context.Context, store MediaStore, criteria Criteria, logger *slog.Logger) ([]*media.Media, error) {
	switch {
	case criteria.ModelType == "" && len(criteria.IDs) == 0:
		records, err := store.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("load all media: %w", err)
		}
		return records, nil
	case len(criteria.IDs) > 0:
		records, err := store.GetByIDs(ctx, criteria.IDs)
		if err != nil {
			return nil, fmt.Errorf("load media by ids: %w", err)
		}
		if missing := unmatched(criteria.IDs, records); len(missing) > 0 {
			logger.Debug("requested ids matched no media",
				logging.Any("ids", missing),
				logging.String(logging.FieldEventType, "ids_unmatched"),
			)
		}
		return records, nil
	default:
		records, err := store.GetByModelType(ctx, criteria.ModelType)
		if err != nil {
			return nil, fmt.Errorf("load media of type %s: %w", criteria.ModelType, err)
		}
		return records, nil
	}
}

func unmatched(ids []string, records []*media.Media) []string {
	found := make(map[string]struct{}, len(records))
	for _, m := range records {
		found[m.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
