// config реализует конфигурацию threads-service: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config: корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Limits   LimitsConfig  `yaml:"limits"`
	Seed     SeedConfig    `yaml:"seed"`
	Guest    GuestConfig   `yaml:"guest"`
	Debug    DebugConfig   `yaml:"debug"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig: общий дедлайн обработки запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// HTTPConfig: публичный REST API.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50086"`
}

// MetricsConfig: служебный HTTP (livez/healthz/metrics).
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"50087"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (m MetricsConfig) Addr() string {
	return net.JoinHostPort(m.Host, m.Port)
}

// LimitsConfig: ограничения на входные данные.
type LimitsConfig struct {
	// Максимальная длина текста комментария в символах (после TrimSpace).
	MaxBody int `yaml:"max_body" env:"MAX_BODY" env-default:"10000"`
}

// SeedConfig: начальные деревья комментариев.
type SeedConfig struct {
	// Путь к YAML с деревьями; пусто: старт с пустым хранилищем.
	Path string `yaml:"path" env:"SEED_PATH"`
}

// GuestConfig: автор по умолчанию, если запрос не несёт X-User-* заголовков.
type GuestConfig struct {
	ID        string `yaml:"id"         env:"GUEST_ID"         env-default:"guest"`
	Name      string `yaml:"name"       env:"GUEST_NAME"       env-default:"Guest"`
	AvatarURL string `yaml:"avatar_url" env:"GUEST_AVATAR_URL"`
}

// DebugConfig: режимы для тестовых сборок.
type DebugConfig struct {
	// StrictTargets превращает промах по родителю/комментарию в ошибку NotFound
	// вместо мягкого no-op.
	StrictTargets bool `yaml:"strict_targets" env:"STRICT_TARGETS" env-default:"false"`
}

// MustLoad: обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
			break
		}

		// Только ENV: все поля имеют дефолты, обязательных нет.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
		c = &cfg
	}

	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate: базовая валидация значений.
func (c *Config) validate() error {
	if c.Limits.MaxBody <= 0 {
		return fmt.Errorf("limits.max_body must be > 0")
	}

	if c.Limits.MaxBody > 100000 {
		return fmt.Errorf("limits.max_body is too large (<= 100000)")
	}

	if c.Timeouts.Service < 0 {
		return fmt.Errorf("timeouts.service must be >= 0")
	}

	if strings.TrimSpace(c.Guest.ID) == "" || strings.TrimSpace(c.Guest.Name) == "" {
		return fmt.Errorf("guest.id and guest.name are required")
	}

	return nil
}
