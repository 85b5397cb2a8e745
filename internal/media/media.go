package media

import (
	"mime"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCollection is used when media is added without a collection name.
const DefaultCollection = "default"

// Media is one stored original file and the bookkeeping for its derived files.
type Media struct {
	ID                   string
	UUID                 string
	ModelType            string
	ModelID              int64
	CollectionName       string
	Name                 string
	FileName             string
	MimeType             string
	Disk                 string
	ConversionsDisk      string
	Size                 int64
	GeneratedConversions map[string]bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OriginalPath is the disk-relative path of the original file.
func (m *Media) OriginalPath() string {
	return path.Join(m.ID, m.FileName)
}

// ConversionPath is the disk-relative path of a derived file. ext is the
// extension without a leading dot; empty keeps the original extension.
func (m *Media) ConversionPath(conversion, ext string) string {
	base := strings.TrimSuffix(m.FileName, path.Ext(m.FileName))
	if ext == "" {
		ext = strings.TrimPrefix(path.Ext(m.FileName), ".")
	}
	name := base + "-" + conversion
	if ext != "" {
		name += "." + ext
	}
	return path.Join(m.ID, "conversions", name)
}

// TargetConversionsDisk returns the disk derived files should be written to.
func (m *Media) TargetConversionsDisk() string {
	if strings.TrimSpace(m.ConversionsDisk) != "" {
		return m.ConversionsDisk
	}
	return m.Disk
}

// HasGeneratedConversion reports whether the named conversion was recorded as generated.
func (m *Media) HasGeneratedConversion(name string) bool {
	return m.GeneratedConversions[name]
}

// GeneratedConversionNames lists generated conversions in sorted order.
func (m *Media) GeneratedConversionNames() []string {
	names := make([]string, 0, len(m.GeneratedConversions))
	for name, ok := range m.GeneratedConversions {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsImage reports whether the record's MIME type is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(m.MimeType), "image/")
}

// NameFromFileName derives a human-friendly display name from a file name,
// e.g. "summer_beach-photo.jpg" becomes "Summer Beach Photo".
func NameFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return ""
	}
	return cases.Title(language.Und).String(base)
}

// MimeTypeFromFileName guesses a MIME type from the file extension, falling
// back to application/octet-stream.
func MimeTypeFromFileName(fileName string) string {
	if typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); typ != "" {
		if i := strings.IndexByte(typ, ';'); i >= 0 {
			typ = typ[:i]
		}
		return typ
	}
	return "application/octet-stream"
}

// SanitizeFileName strips directory components and characters that are
// awkward in object keys.
func SanitizeFileName(fileName string) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '#', '/', '\\', ' ', '?', '%', '*', ':', '|', '"', '<', '>':
			return '-'
		}
		return r
	}, base)
	if base == "." || base == "" {
		return "file"
	}
	return base
}
