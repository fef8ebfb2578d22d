package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/leengari/tdsmeta/internal/tds"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"

	// DefaultEnvPrefix prefixes every environment override, e.g.
	// TDSMETA_TDS_ALWAYS_ENCRYPTED=true
	DefaultEnvPrefix = "tdsmeta"
)

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Config, error)
}

type Config struct {
	TDS     TDS     `yaml:"tds"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
	Metrics Metrics `yaml:"metrics"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TDS, validation.Required),
		validation.Field(&c.Logging, validation.Required),
		validation.Field(&c.Server),
		validation.Field(&c.Metrics),
	)
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		TDS: TDS{
			Version: tds.Version7_4.String(),
		},
		Logging: Logging{
			Level:   "info",
			Backend: BackendSlog,
		},
		Server: Server{
			Port: 4444,
		},
	}
}

// TDS holds the session settings consulted by the decoders
type TDS struct {
	Version          string `yaml:"version"`
	AlwaysEncrypted  bool   `yaml:"always_encrypted"`
	CamelCaseColumns bool   `yaml:"camel_case_columns"`

	// ColumnRenames maps a wire column name to the name reported for it.
	// Keys match case-insensitively.
	ColumnRenames map[string]string `yaml:"column_renames,omitempty"`
}

func (t TDS) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Version, validation.Required, validation.By(func(any) error {
			_, err := tds.ParseVersion(t.Version)
			return err
		})),
	)
}

// Options translates the section into decoder options
func (t TDS) Options() (tds.Options, error) {
	v, err := tds.ParseVersion(t.Version)
	if err != nil {
		return tds.Options{}, fmt.Errorf("tds.version: %w", err)
	}

	opts := tds.Options{
		TDSVersion:       v,
		AlwaysEncrypted:  t.AlwaysEncrypted,
		CamelCaseColumns: t.CamelCaseColumns,
	}

	if len(t.ColumnRenames) > 0 {
		renames := make(map[string]string, len(t.ColumnRenames))
		for from, to := range t.ColumnRenames {
			renames[strings.ToLower(from)] = to
		}
		camel := t.CamelCaseColumns
		opts.ColumnNameReplacer = func(name string, _ int, _ tds.Metadata) string {
			if to, ok := renames[strings.ToLower(name)]; ok {
				return to
			}
			if camel {
				return tds.CamelCase(name)
			}
			return name
		}
	}

	return opts, nil
}

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

type Logging struct {
	Level     string `yaml:"level"`
	Backend   string `yaml:"backend"`
	SeqURL    string `yaml:"seq_url"`
	AddSource bool   `yaml:"add_source"`
}

func (l Logging) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Backend, validation.Required, validation.In(BackendSlog, BackendZap)),
		validation.Field(&l.SeqURL, is.URL),
	)
}

type Server struct {
	Port int `yaml:"port"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
	)
}

type Metrics struct {
	// Address serves /metrics when set, e.g. ":9090"
	Address string `yaml:"address"`
}

func (m Metrics) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Address, validation.By(listenAddress)),
	)
}

// listenAddress accepts host:port and :port
func listenAddress(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, port, err := net.SplitHostPort(s)
	if err != nil {
		return err
	}
	return is.Port.Validate(port)
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	fileName := filepath.Base(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     filepath.Dir(absolutePath),
	}, nil
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

type FileSystemLoader struct{}

// Load reads path/name.yaml over the defaults and applies environment
// overrides
func (fs *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Config, error) {
	v := viper.New()

	v.SetConfigFile(filepath.Join(path, name+"."+defaultExtension))
	v.SetConfigType(defaultExtension)

	setDefaults(v, Default())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if b != nil {
		err := b.Bind(v)
		if err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)

	err := v.ReadInConfig()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var config Config

	err = v.Unmarshal(&config, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("tds.version", d.TDS.Version)
	v.SetDefault("tds.always_encrypted", d.TDS.AlwaysEncrypted)
	v.SetDefault("tds.camel_case_columns", d.TDS.CamelCaseColumns)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.backend", d.Logging.Backend)
	v.SetDefault("logging.seq_url", d.Logging.SeqURL)
	v.SetDefault("logging.add_source", d.Logging.AddSource)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("metrics.address", d.Metrics.Address)
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		err := v.BindEnv(key, envVar)
		if err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

// NewDefaultEnvBinder binds the conventional Seq variable
func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"SEQ_SERVER_URL": "logging.seq_url",
	})
}
