package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del servicio. Env-first: cada
// clave se puede sobreescribir con su variable de entorno (PORT,
// DB_DSN, CORE_API_URL, ...); opcionalmente se lee un config.yaml.
type Config struct {
	Port string `mapstructure:"port"`

	// DSN de Postgres. Vacío => repos in-memory (modo dev).
	DBDSN string `mapstructure:"db_dsn"`

	// API central de ADOPTME. Vacío => adapters locales (modo dev).
	CoreAPIURL     string        `mapstructure:"core_api_url"`
	CoreAPIKey     string        `mapstructure:"core_api_key"`
	CoreAPITimeout time.Duration `mapstructure:"core_api_timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	AppName   string `mapstructure:"app_name"`
}

// Load lee config desde env y, si existe, desde configPath (yaml).
// configPath vacío => solo env + defaults.
func Load(configPath string) (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "")
	v.SetDefault("core_api_url", "")
	v.SetDefault("core_api_key", "")
	v.SetDefault("core_api_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("app_name", "adoptme-adoption-process")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if strings.TrimSpace(configPath) != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port must not be empty")
	}
	// El core API exige URL y key juntos: uno solo es configuración a medias.
	hasURL := strings.TrimSpace(c.CoreAPIURL) != ""
	hasKey := strings.TrimSpace(c.CoreAPIKey) != ""
	if hasURL != hasKey {
		return fmt.Errorf("core_api_url and core_api_key must be set together")
	}
	return nil
}

// UseCoreAPI indica si hay que hablar con el API central o correr en
// modo dev con adapters locales.
func (c Config) UseCoreAPI() bool {
	return strings.TrimSpace(c.CoreAPIURL) != ""
}
