package logging

// Config contains the configurable items for this package.
type Config struct {
	Environment string     `long:"env" choice:"dev" choice:"prod" description:"Logging preset"`
	File        FileConfig `group:"File" namespace:"file"`
}

// FileConfig enables a rotating log file next to the console output.
// An empty Path disables it.
type FileConfig struct {
	Path       string `long:"path" description:"Log file path, empty disables file output"`
	MaxSizeMB  int    `long:"max-size" description:"Megabytes before the file is rotated"`
	MaxBackups int    `long:"max-backups" description:"Rotated files to keep"`
	MaxAgeDays int    `long:"max-age" description:"Days to keep rotated files"`
	Compress   bool   `long:"compress" description:"Gzip rotated files"`
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "dev",
		File: FileConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}
