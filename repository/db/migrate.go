package db

import (
	"fmt"
	"log"
	"strings"

	"familytasks/internal/domain/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration applies every pending up migration from migratePath.
func Migration(dsn, migratePath string) error {
	m, err := newMigrate(dsn, migratePath)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Println("[INFO] Новых миграций нет")
			return nil
		}
		log.Println("[ERROR] Ошибка применения миграций:", err)
		return err
	}
	log.Println("[SUCCESS] Миграции применены")
	return nil
}

// MigrationDown rolls back steps migrations, or all of them when steps <= 0.
func MigrationDown(dsn, migratePath string, steps int) error {
	m, err := newMigrate(dsn, migratePath)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && err != migrate.ErrNoChange {
		log.Println("[ERROR] Ошибка отката миграций:", err)
		return err
	}
	log.Println("[SUCCESS] Миграции откачены")
	return nil
}

func newMigrate(dsn, migratePath string) (*migrate.Migrate, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: пустая строка подключения", errors.ErrDatabaseConnection)
	}
	if strings.TrimSpace(migratePath) == "" {
		return nil, fmt.Errorf("%w: не указан путь к миграциям", errors.ErrBadRequest)
	}

	m, err := migrate.New("file://"+migratePath, dsn)
	if err != nil {
		log.Println("[ERROR] Не удалось инициализировать миграции:", err)
		return nil, err
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Println("[WARN] Ошибка закрытия источника миграций:", srcErr)
	}
	if dbErr != nil {
		log.Println("[WARN] Ошибка закрытия соединения миграций:", dbErr)
	}
}
