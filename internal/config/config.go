package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	App  AppConfig
	DB   DBConfig
	Auth AuthConfig
}

type AppConfig struct {
	Host         string
	Port         string
	TemplatesDir string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type AuthConfig struct {
	// HashPasswords включает bcrypt-хэширование паролей.
	// При false пароли хранятся в открытом виде, как в первой версии сервиса.
	HashPasswords bool
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_HOST", "localhost")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("TEMPLATES_DIR", "templates")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "collection")
	viper.SetDefault("AUTH_HASH_PASSWORDS", true)

	// .env опционален, переменные окружения имеют приоритет
	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			return nil, err
		}
	}

	var cfg Config
	cfg.App.Host = viper.GetString("APP_HOST")
	cfg.App.Port = viper.GetString("APP_PORT")
	cfg.App.TemplatesDir = viper.GetString("TEMPLATES_DIR")
	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.Auth.HashPasswords = viper.GetBool("AUTH_HASH_PASSWORDS")

	return &cfg, nil
}

// BaseURL адрес сервиса в том виде, в котором он подставляется
// в короткие ссылки: host:port без схемы
func (c AppConfig) BaseURL() string {
	return c.Host + ":" + c.Port
}
