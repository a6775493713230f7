package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/spreadsheet"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. KMLFORGE_LABEL_COLUMN.
const envPrefix = "KMLFORGE"

// Configuration errors returned by Load.
var (
	ErrFlags      = errors.New("failed to parse command line flags")
	ErrConfigFile = errors.New("failed to read configuration file")
	ErrInvalid    = errors.New("invalid configuration")
)

// Config holds the settings of one kmlforge run.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Dir: The directory scanned for inputs and receiving outputs.
// - LabelColumn, NoteColumn: The spreadsheet columns mapped to placemark name and description.
// - Combine: Build a single KML from every spreadsheet.
// - ToTable: Convert KML and KMZ files to spreadsheets instead.
// - Merge: Combine KML files with distinct marker colours.
// - Output: Target of a merge, defaults to all_kml.kml in Dir.
// - TableFormat: Spreadsheet format written when converting to tables.
// - MetricsFile: Optional path of a Prometheus textfile written after the run.
// - Files: Explicit KML files to merge, taken from positional arguments.
type Config struct {
	Env         string             `mapstructure:"env"`          // Env is the current environment: local, development, production.
	Dir         string             `mapstructure:"dir"`          // Dir is the batch directory.
	LabelColumn string             `mapstructure:"label-column"` // LabelColumn is the placemark name column.
	NoteColumn  string             `mapstructure:"note-column"`  // NoteColumn is the placemark description column.
	Combine     bool               `mapstructure:"combine"`      // Combine writes all_data.kml instead of one KML per spreadsheet.
	ToTable     bool               `mapstructure:"to-table"`     // ToTable converts KML and KMZ files to spreadsheets.
	Merge       bool               `mapstructure:"merge"`        // Merge combines KML files into one document.
	Output      string             `mapstructure:"output"`       // Output is the merged document path.
	TableFormat spreadsheet.Format `mapstructure:"table-format"` // TableFormat is the spreadsheet output format.
	MetricsFile string             `mapstructure:"metrics-file"` // MetricsFile receives the metrics in textfile format.
	Files       []string           `mapstructure:"-"`            // Files lists the KML files given on the command line.
}

// Load builds the configuration from, in increasing priority, defaults, an optional
// kmlforge.yaml (or the file named by --config), KMLFORGE_* environment variables
// (a .env file is loaded first) and command line flags.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFlags, err)
	}

	v := viper.New()
	v.SetDefault("env", "production")

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFlags, err)
	}

	if err := readConfigFile(v, flags); err != nil {
		return nil, err
	}

	// KMLFORGE_LABEL_COLUMN -> label-column
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %w", ErrInvalid, err)
	}
	cfg.Files = flags.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required settings and normalizes the table format.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Dir) == "" {
		errs = append(errs, "dir is required")
	}
	if strings.TrimSpace(c.LabelColumn) == "" {
		errs = append(errs, "label-column must not be empty")
	}

	format, err := spreadsheet.ParseFormat(string(c.TableFormat))
	if err != nil {
		errs = append(errs, err.Error())
	} else {
		c.TableFormat = format
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}

	return nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("kmlforge", pflag.ContinueOnError)

	flags.String("dir", "", "directory holding the input files")
	flags.String("label-column", spreadsheet.DefaultLabelColumn, "spreadsheet column used as placemark name")
	flags.String("note-column", spreadsheet.DefaultNoteColumn, "spreadsheet column used as placemark description")
	flags.Bool("combine", false, "write every spreadsheet into a single all_data.kml")
	flags.Bool("to-table", false, "convert KML and KMZ files to spreadsheets")
	flags.Bool("merge", false, "combine KML files into one document with distinct marker colours")
	flags.String("output", "", "merged document path (default DIR/all_kml.kml)")
	flags.String("table-format", string(spreadsheet.FormatXLSX), "spreadsheet format written by --to-table: xlsx or csv")
	flags.String("metrics-file", "", "write run metrics to this Prometheus textfile")
	flags.String("config", "", "configuration file (default ./kmlforge.yaml when present)")

	return flags
}

// readConfigFile reads the file named by --config, or kmlforge.yaml from the working
// directory when it exists.
func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	path, _ := flags.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigFile, err)
		}
		return nil
	}

	v.SetConfigName("kmlforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrConfigFile, err)
	}

	return nil
}
