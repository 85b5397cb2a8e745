package config

const (
	defaultConfigPath    = "~/.config/medialib/config.toml"
	defaultDataDir       = "~/.local/share/medialib"
	defaultLogDir        = "~/.local/share/medialib/logs"
	defaultLocalRoot     = "~/.local/share/medialib/disks/local"
	defaultSQLiteName    = "media.db"
	defaultEnvironment   = "local"
	defaultStoreDriver   = StoreSQLite
	defaultDisk          = DiskLocal
	defaultS3Region      = "us-east-1"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultJPEGQuality   = 90
	defaultConversionFit = FitFit
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Disk names.
const (
	DiskLocal = "local"
	DiskS3    = "s3"
)

// Conversion fit modes.
const (
	// FitFit scales the image down to fit within width x height, keeping
	// the aspect ratio.
	FitFit = "fit"
	// FitFill scales and crops the image to exactly width x height.
	FitFill = "fill"
	// FitResize scales to width x height; a zero dimension keeps the
	// aspect ratio.
	FitResize = "resize"
	// FitCrop cuts the centered width x height region without scaling.
	FitCrop = "crop"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Environment: Environment{
			Name:      defaultEnvironment,
			Protected: []string{"production"},
		},
		Store: Store{
			Driver: defaultStoreDriver,
		},
		Disks: Disks{
			Default: defaultDisk,
			Local: LocalDisk{
				Root: defaultLocalRoot,
			},
			S3: S3Disk{
				Region: defaultS3Region,
			},
		},
		Conversions: []Conversion{
			{Name: "thumb", Width: 368, Height: 232, Fit: FitFill, Quality: defaultJPEGQuality},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
