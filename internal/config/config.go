package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/depdash-cli/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DatasetPath       string `mapstructure:"dataset_path" yaml:"dataset_path" validate:"required"`
	Delimiter         string `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`
	SheetName         string `mapstructure:"sheet_name" yaml:"sheet_name"`
	ShowMissingGender bool   `mapstructure:"show_missing_gender" yaml:"show_missing_gender"`

	// HTTP server
	ListenAddr         string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec" validate:"gte=0"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec" validate:"gte=0"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" validate:"gte=1"`
	// TableLimit caps the rows of the data table page in the browser; 0 shows all.
	TableLimit int `mapstructure:"table_limit" yaml:"table_limit" validate:"gte=0"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"required,oneof=trace debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"required,oneof=text json"`
}

var defaults = map[string]any{
	"dataset_path":         "dataset_depressao_estudantes.csv",
	"delimiter":            "",
	"sheet_name":           "",
	"show_missing_gender":  true,
	"listen_addr":          "127.0.0.1:8501",
	"read_timeout_sec":     15,
	"write_timeout_sec":    30,
	"shutdown_timeout_sec": 10,
	"table_limit":          1000,
	"log_level":            "info",
	"log_format":           "text",
}

// Keys lists every configuration key in display order.
func Keys() []string {
	return []string{
		"dataset_path", "delimiter", "sheet_name", "show_missing_gender",
		"listen_addr", "read_timeout_sec", "write_timeout_sec", "shutdown_timeout_sec", "table_limit",
		"log_level", "log_format",
	}
}

// Dir returns ~/.depdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".depdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.depdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := Validate(c); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DEPDASH")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// the file is optional; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Global {
	c := &Global{}
	for _, k := range Keys() {
		_ = c.Set(k, fmt.Sprint(defaults[k]))
	}
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		_, err := ParseDelimiter(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints and reports every failing key.
func Validate(c *Global) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", keyFor(fe.StructField()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func keyFor(field string) string {
	switch field {
	case "DatasetPath":
		return "dataset_path"
	case "ListenAddr":
		return "listen_addr"
	case "ReadTimeoutSec":
		return "read_timeout_sec"
	case "WriteTimeoutSec":
		return "write_timeout_sec"
	case "ShutdownTimeoutSec":
		return "shutdown_timeout_sec"
	case "TableLimit":
		return "table_limit"
	case "LogLevel":
		return "log_level"
	case "LogFormat":
		return "log_format"
	case "Delimiter":
		return "delimiter"
	}
	return field
}

// ParseDelimiter maps the delimiter setting to a rune; "" means detect from the file extension.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',', ';', 'tab' or '|')", s)
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "dataset_path":
		return c.DatasetPath, nil
	case "delimiter":
		return c.Delimiter, nil
	case "sheet_name":
		return c.SheetName, nil
	case "show_missing_gender":
		return strconv.FormatBool(c.ShowMissingGender), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "read_timeout_sec":
		return strconv.Itoa(c.ReadTimeoutSec), nil
	case "write_timeout_sec":
		return strconv.Itoa(c.WriteTimeoutSec), nil
	case "shutdown_timeout_sec":
		return strconv.Itoa(c.ShutdownTimeoutSec), nil
	case "table_limit":
		return strconv.Itoa(c.TableLimit), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key. It does not validate the whole struct.
func (c *Global) Set(key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "dataset_path":
		c.DatasetPath = val
	case "delimiter":
		if _, err = ParseDelimiter(val); err == nil {
			c.Delimiter = val
		}
	case "sheet_name":
		c.SheetName = val
	case "show_missing_gender":
		var b bool
		if b, err = strconv.ParseBool(val); err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		c.ShowMissingGender = b
	case "listen_addr":
		c.ListenAddr = val
	case "read_timeout_sec":
		c.ReadTimeoutSec, err = atoi()
	case "write_timeout_sec":
		c.WriteTimeoutSec, err = atoi()
	case "shutdown_timeout_sec":
		c.ShutdownTimeoutSec, err = atoi()
	case "table_limit":
		c.TableLimit, err = atoi()
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}
