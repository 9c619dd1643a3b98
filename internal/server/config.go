package server

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"familytasks/internal/domain/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Addr        string
	Port        int
	DBStr       string
	MigratePath string
	Storage     string
	JWTSecret   string
}

const (
	StorageAuto     = "auto"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	defaultAddr        = "0.0.0.0"
	defaultPort        = 8080
	defaultDBStr       = "postgresql://shouldbeinVaultuser:shouldbeinVaultpassword@db:5432/tasks?sslmode=disable"
	defaultMigratePath = "migrations"
	defaultStorage     = StorageAuto
)

// config keys and the environment variables bound to them
var envBindings = map[string]string{
	"addr":        "ADDR",
	"port":        "PORT",
	"dbstr":       "DB_STR",
	"migratepath": "MIGRATE_PATH",
	"storage":     "STORAGE",
	"jwt_secret":  "JWT_SECRET",
}

// flag names differ from config keys only for the JWT secret
var flagBindings = map[string]string{
	"addr":        "addr",
	"port":        "port",
	"dbstr":       "dbstr",
	"migratepath": "migratepath",
	"storage":     "storage",
	"jwt_secret":  "jwt-secret",
}

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "путь к файлу конфигурации (JSON или YAML)")
	fs.String("addr", defaultAddr, "адрес сервера")
	fs.Int("port", defaultPort, "порт сервера")
	fs.String("dbstr", defaultDBStr, "строка подключения к БД")
	fs.String("dbdsn", "", "DSN для подключения к базе данных (приоритетнее dbstr)")
	fs.String("migratepath", defaultMigratePath, "путь к папке с миграциями")
	fs.String("storage", defaultStorage, "хранилище: auto, postgres или memory")
	fs.String("jwt-secret", "", "секрет для проверки JWT (пусто - без аутентификации)")
}

// ReadConfig reads the configuration without command-line flags.
func ReadConfig() *Config {
	return LoadConfig(nil)
}

// LoadConfig layers defaults, .env, the config file, environment variables
// and flags, in increasing priority. Bad values are reported and replaced by
// defaults; LoadConfig never fails.
func LoadConfig(fs *pflag.FlagSet) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("[WARN] Не удалось прочитать .env:", err)
	}

	v := viper.New()
	v.SetDefault("addr", defaultAddr)
	v.SetDefault("port", defaultPort)
	v.SetDefault("dbstr", defaultDBStr)
	v.SetDefault("migratepath", defaultMigratePath)
	v.SetDefault("storage", defaultStorage)
	v.SetDefault("jwt_secret", "")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	if fs != nil {
		for key, name := range flagBindings {
			if f := fs.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	loadConfigFile(v, configPath(fs))

	cfg := &Config{
		Addr:        v.GetString("addr"),
		Port:        parsePort(v.GetString("port")),
		DBStr:       v.GetString("dbstr"),
		MigratePath: v.GetString("migratepath"),
		Storage:     strings.ToLower(v.GetString("storage")),
		JWTSecret:   v.GetString("jwt_secret"),
	}

	if cfg.DBStr == defaultDBStr {
		if dsn := composeDSN(); dsn != "" {
			cfg.DBStr = dsn
		}
	}
	if fs != nil {
		if dsn, _ := fs.GetString("dbdsn"); dsn != "" {
			cfg.DBStr = dsn
		}
	}

	return cfg
}

func configPath(fs *pflag.FlagSet) string {
	if fs != nil {
		if p, _ := fs.GetString("config"); p != "" {
			return p
		}
	}
	return os.Getenv("CONFIG")
}

func loadConfigFile(v *viper.Viper, path string) {
	if path == "" {
		log.Println("[INFO] Файл конфигурации не указан")
		return
	}

	log.Println("[INFO] Загрузка конфигурации из:", path)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			log.Printf("[WARN] %s %s: %v", errors.ErrConfigFileReadFailed.Error(), path, statErr)
		} else {
			log.Printf("[WARN] %s: %v", errors.ErrConfigParseFailed.Error(), err)
		}
		return
	}
	log.Println("[SUCCESS] Конфигурация загружена из:", path)
}

func parsePort(raw string) int {
	p, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[WARN] %s порта: %s", errors.ErrConfigInvalidFormat.Error(), raw)
		return defaultPort
	}
	if p < 1 || p > 65535 {
		log.Printf("[WARN] %s - порт должен быть от 1 до 65535: %d", errors.ErrConfigInvalidFormat.Error(), p)
		return defaultPort
	}
	return p
}

func composeDSN() string {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	if dbUser == "" || dbPassword == "" || dbName == "" || dbHost == "" || dbPort == "" {
		return ""
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
}

// ListenAddr is the address the HTTP server binds to. A zero port means the
// default one.
func (c *Config) ListenAddr() string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", c.Addr, port)
}
