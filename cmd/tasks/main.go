package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familytasks/internal/domain/errors"
	"familytasks/internal/server"
	db "familytasks/repository/db"
	inmemory "familytasks/repository/inmemory"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

type API interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type Repositories struct {
	Users  server.UserRepository
	Groups server.GroupRepository
	Tasks  server.TaskRepository
	Close  func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Сервис семейных задач",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(server.LoadConfig(cmd.Flags()))
		},
	}
	server.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newMigrateCmd(), newTokenCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunMigrations(server.LoadConfig(cmd.Flags()))
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Откатить миграции (все, если --steps не указан)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.LoadConfig(cmd.Flags())
			return db.MigrationDown(cfg.DBStr, cfg.MigratePath, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "количество откатываемых миграций")

	migrateCmd.AddCommand(down)
	return migrateCmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID int
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить JWT для пользователя",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.LoadConfig(cmd.Flags())
			if userID < 1 {
				return fmt.Errorf("%w: --user-id должен быть положительным", errors.ErrBadRequest)
			}
			token, err := server.IssueToken(cfg.JWTSecret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user-id", 0, "id пользователя")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "срок действия токена")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func serve(cfg *server.Config) error {
	log.Println("Запуск сервиса задач...")

	if cfg.Storage != server.StorageMemory {
		if err := RunMigrations(cfg); err != nil {
			if cfg.Storage == server.StoragePostgres {
				return err
			}
			log.Println("[WARN] Миграции не применены:", err)
		}
	}

	repos, err := InitializeRepositories(cfg)
	if err != nil {
		log.Println("[ERROR] Не удалось инициализировать хранилище:", err)
		return err
	}
	defer repos.Close()

	api := server.NewTaskAPI(repos.Users, repos.Groups, repos.Tasks, cfg)
	if api == nil {
		return errors.ErrInternalServer
	}

	sigChan, serverErr := StartServer(api, cfg)

	select {
	case sig := <-sigChan:
		if err := HandleShutdown(api, sig); err != nil {
			return err
		}
	case err := <-serverErr:
		log.Printf("[ERROR] Ошибка сервера: %v", err)
		return err
	}

	log.Println("Сервис завершен")
	return nil
}

func RunMigrations(cfg *server.Config) error {
	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.Printf("[ERROR] Ошибка применения миграций: %v", err)
		return err
	}
	return nil
}

// InitializeRepositories picks the storage named in cfg. In auto mode a
// database that cannot be reached is replaced by memory.
func InitializeRepositories(cfg *server.Config) (*Repositories, error) {
	switch cfg.Storage {
	case server.StorageMemory:
		return memoryRepositories(), nil
	case "", server.StorageAuto, server.StoragePostgres:
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownStorage, cfg.Storage)
	}

	dbStorage, err := db.NewStorage(cfg.DBStr)
	if err != nil {
		if cfg.Storage == server.StoragePostgres {
			return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseConnection, err)
		}
		log.Println("[WARN] Не удалось подключиться к БД, используем память:", err)
		return memoryRepositories(), nil
	}

	return &Repositories{
		Users:  dbStorage,
		Groups: dbStorage,
		Tasks:  dbStorage,
		Close:  dbStorage.Close,
	}, nil
}

func memoryRepositories() *Repositories {
	inmem := inmemory.NewStorage()
	return &Repositories{
		Users:  inmem,
		Groups: inmem,
		Tasks:  inmem,
		Close:  func() {},
	}
}

// StartServer runs api in the background and returns the channels serve
// waits on.
func StartServer(api API, cfg *server.Config) (chan os.Signal, chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Сервис запущен на %s", cfg.ListenAddr())
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	return sigChan, serverErr
}

func HandleShutdown(api API, sig os.Signal) error {
	log.Printf("[INFO] Получен сигнал %v, начинаем graceful shutdown...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Ошибка при graceful shutdown: %v", err)
		return err
	}
	log.Println("[SUCCESS] Graceful shutdown выполнен успешно")
	return nil
}
