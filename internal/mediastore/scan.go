package mediastore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medialib/internal/media"
)

const mediaColumns = `id, uuid, model_type, model_id, collection_name, name, file_name,
    mime_type, disk, conversions_disk, size, generated_conversions, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// prepareInsert fills defaults on a copy of m before it is written.
func prepareInsert(m *media.Media, now time.Time) (*media.Media, []byte, error) {
	if m == nil {
		return nil, nil, fmt.Errorf("insert media: record is nil")
	}
	if strings.TrimSpace(m.ModelType) == "" {
		return nil, nil, fmt.Errorf("insert media: model type is required")
	}
	if strings.TrimSpace(m.FileName) == "" {
		return nil, nil, fmt.Errorf("insert media: file name is required")
	}
	if strings.TrimSpace(m.Disk) == "" {
		return nil, nil, fmt.Errorf("insert media: disk is required")
	}
	record := *m
	if record.UUID == "" {
		record.UUID = uuid.NewString()
	}
	if record.CollectionName == "" {
		record.CollectionName = media.DefaultCollection
	}
	if record.Name == "" {
		record.Name = media.NameFromFileName(record.FileName)
	}
	if record.MimeType == "" {
		record.MimeType = media.MimeTypeFromFileName(record.FileName)
	}
	if record.GeneratedConversions == nil {
		record.GeneratedConversions = map[string]bool{}
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	generated, err := json.Marshal(record.GeneratedConversions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal generated conversions: %w", err)
	}
	return &record, generated, nil
}

func decodeGenerated(raw []byte) (map[string]bool, error) {
	generated := map[string]bool{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return generated, nil
	}
	if err := json.Unmarshal(raw, &generated); err != nil {
		return nil, fmt.Errorf("decode generated conversions: %w", err)
	}
	return generated, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func encodeGenerated(flags map[string]bool) (string, error) {
	encoded, err := json.Marshal(flags)
	if err != nil {
		return "", fmt.Errorf("marshal generated conversions: %w", err)
	}
	return string(encoded), nil
}
