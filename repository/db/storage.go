package db

import (
	"context"
	"log"
	"math"
	"time"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 15 * time.Second

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const taskSelect = `
SELECT t.id::text, t.name, t.description, t.status, t.priority, t.reporter_id,
       ARRAY(SELECT e.executor_id FROM executors_tasks e WHERE e.task_id = t.id ORDER BY e.executor_id),
       t.confidential, t.deadline, r.points, t.created_at, t.updated_at
FROM tasks t
LEFT JOIN rewards r ON r.task_id = t.id`

type queries struct {
	createUser        string
	getUserByID       string
	getUsersByGroupID string
	updateUser        string
	createGroup       string
	joinOwnGroup      string
	getGroupByID      string
	getGroupByOwnerID string
	createTask        string
	updateTask        string
	getTaskByID       string
	getTasksByGroupID string
	clearExecutors    string
	insertExecutors   string
	clearReward       string
	insertReward      string
}

// Storage is the PostgreSQL repository. Statements are prepared and cached
// per connection by the pool.
type Storage struct {
	pool *pgxpool.Pool
	q    queries
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Println("[ERROR] Некорректная строка подключения к базе данных:", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Println("[ERROR] Не удалось подключиться к базе данных:", err)
		return nil, err
	}

	s := &Storage{
		pool: pool,
		q: queries{
			createUser:        `INSERT INTO users (name, admin, group_id) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
			getUserByID:       `SELECT id, name, admin, group_id, created_at, updated_at FROM users WHERE id = $1`,
			getUsersByGroupID: `SELECT id, name, admin, group_id, created_at, updated_at FROM users WHERE group_id = $1 ORDER BY id`,
			updateUser:        `UPDATE users SET name = $1, admin = $2, group_id = $3, updated_at = now() WHERE id = $4 RETURNING created_at, updated_at`,
			createGroup:       `INSERT INTO groups (owner_id) VALUES ($1) RETURNING id, created_at, updated_at`,
			joinOwnGroup:      `UPDATE users SET group_id = $1, updated_at = now() WHERE id = $2 AND group_id IS NULL`,
			getGroupByID:      `SELECT id, owner_id, created_at, updated_at, deleted_at FROM groups WHERE id = $1 AND deleted_at IS NULL`,
			getGroupByOwnerID: `SELECT id, owner_id, created_at, updated_at, deleted_at FROM groups WHERE owner_id = $1 AND deleted_at IS NULL`,
			createTask: `INSERT INTO tasks (id, name, description, status, priority, reporter_id, confidential, deadline)
				VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`,
			updateTask: `UPDATE tasks SET name = $2, description = $3, status = $4, priority = $5, confidential = $6,
				deadline = $7, updated_at = now() WHERE id = $1::uuid RETURNING reporter_id, created_at, updated_at`,
			getTaskByID:       taskSelect + ` WHERE t.id = $1::uuid`,
			getTasksByGroupID: taskSelect + ` WHERE t.reporter_id IN (SELECT id FROM users WHERE group_id = $1) ORDER BY t.created_at, t.id`,
			clearExecutors:    `DELETE FROM executors_tasks WHERE task_id = $1::uuid`,
			insertExecutors:   `INSERT INTO executors_tasks (task_id, executor_id) SELECT $1::uuid, unnest($2::int[])`,
			clearReward:       `DELETE FROM rewards WHERE task_id = $1::uuid`,
			insertReward:      `INSERT INTO rewards (task_id, points) VALUES ($1::uuid, $2)`,
		},
	}
	log.Println("[SUCCESS] Соединение с базой данных установлено успешно")
	return s, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx, s.q.createUser, user.Name, user.Admin, user.GroupID).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return errors.ErrGroupNotFound
		}
		log.Println("[ERROR] Не удалось создать пользователя:", err)
		return err
	}
	log.Println("[SUCCESS] Пользователь успешно создан:", user.ID)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	if !fitsInt4(id) {
		return nil, errors.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, s.q.getUserByID, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] Ошибка при получении пользователя:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUsersByGroupID(ctx context.Context, groupID int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, s.q.getUsersByGroupID, groupID)
	if err != nil {
		log.Println("[ERROR] Не удалось получить участников группы:", err)
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Println("[ERROR] Ошибка при чтении пользователей:", err)
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx, s.q.updateUser, user.Name, user.Admin, user.GroupID, user.ID).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return errors.ErrUserNotFound
		}
		if pgCode(err) == pgForeignKeyViolation {
			return errors.ErrGroupNotFound
		}
		log.Println("[ERROR] Не удалось обновить пользователя:", err)
		return err
	}
	log.Println("[SUCCESS] Пользователь успешно обновлен:", user.ID)
	return nil
}

func (s *Storage) CreateGroup(ctx context.Context, group *models.Group) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, s.q.createGroup, group.OwnerID).
			Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return err
		}
		ct, err := tx.Exec(ctx, s.q.joinOwnGroup, group.ID, group.OwnerID)
		if err != nil {
			return err
		}
		// the insert above already proved the owner exists
		if ct.RowsAffected() == 0 {
			return errors.ErrUserHasGroup
		}
		return nil
	})
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return errors.ErrConflict
		case pgForeignKeyViolation:
			return errors.ErrUserNotFound
		}
		if errors.Is(err, errors.ErrUserHasGroup) {
			return err
		}
		log.Println("[ERROR] Не удалось создать группу:", err)
		return err
	}
	group.DeletedAt = nil
	log.Println("[SUCCESS] Группа успешно создана:", group.ID)
	return nil
}

func (s *Storage) GetGroupByID(ctx context.Context, id int) (*models.Group, error) {
	return s.getGroup(ctx, s.q.getGroupByID, id)
}

func (s *Storage) GetGroupByOwnerID(ctx context.Context, ownerID int) (*models.Group, error) {
	return s.getGroup(ctx, s.q.getGroupByOwnerID, ownerID)
}

func (s *Storage) getGroup(ctx context.Context, query string, arg int) (*models.Group, error) {
	if !fitsInt4(arg) {
		return nil, errors.ErrGroupNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	group := &models.Group{}
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&group.ID, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt, &group.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrGroupNotFound
		}
		log.Println("[ERROR] Ошибка при получении группы:", err)
		return nil, err
	}
	return group, nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	task.ID = uuid.New().String()
	if task.ExecutorIDs == nil {
		task.ExecutorIDs = []int{}
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, s.q.createTask,
			task.ID, task.Name, task.Description, string(task.Status), string(task.Priority),
			task.ReporterID, task.Confidential, deadlineParam(task.Deadline),
		).Scan(&task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return err
		}
		return s.writeTaskLinks(ctx, tx, task)
	})
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return errors.ErrUserNotFound
		}
		log.Println("[ERROR] Не удалось создать задачу:", err)
		return err
	}
	log.Println("[SUCCESS] Задача успешно создана:", task.ID)
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.ErrNotFound
	}

	task, err := scanTask(s.pool.QueryRow(ctx, s.q.getTaskByID, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		log.Println("[ERROR] Ошибка при получении задачи:", err)
		return nil, err
	}
	return task, nil
}

func (s *Storage) GetTasksByGroupID(ctx context.Context, groupID int) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, s.q.getTasksByGroupID, groupID)
	if err != nil {
		log.Println("[ERROR] Не удалось получить задачи группы:", err)
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Println("[ERROR] Ошибка при чтении задач:", err)
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask overwrites the task's mutable fields and replaces its executors
// and reward. The reporter never changes.
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if task.ExecutorIDs == nil {
		task.ExecutorIDs = []int{}
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, s.q.updateTask,
			task.ID, task.Name, task.Description, string(task.Status), string(task.Priority),
			task.Confidential, deadlineParam(task.Deadline),
		).Scan(&task.ReporterID, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, s.q.clearExecutors, task.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, s.q.clearReward, task.ID); err != nil {
			return err
		}
		return s.writeTaskLinks(ctx, tx, task)
	})
	if err != nil {
		if err == pgx.ErrNoRows {
			return errors.ErrNotFound
		}
		if pgCode(err) == pgForeignKeyViolation {
			return errors.ErrUserNotFound
		}
		log.Println("[ERROR] Не удалось обновить задачу:", err)
		return err
	}
	log.Println("[SUCCESS] Задача успешно обновлена:", task.ID)
	return nil
}

func (s *Storage) writeTaskLinks(ctx context.Context, tx pgx.Tx, task *models.Task) error {
	if len(task.ExecutorIDs) > 0 {
		ids := make([]int32, len(task.ExecutorIDs))
		for i, id := range task.ExecutorIDs {
			ids[i] = int32(id)
		}
		if _, err := tx.Exec(ctx, s.q.insertExecutors, task.ID, ids); err != nil {
			return err
		}
	}
	if task.RewardsPoints != nil {
		if _, err := tx.Exec(ctx, s.q.insertReward, task.ID, *task.RewardsPoints); err != nil {
			return err
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Admin, &user.GroupID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task      models.Task
		status    string
		priority  string
		executors []int32
		deadline  *time.Time
	)
	err := row.Scan(&task.ID, &task.Name, &task.Description, &status, &priority, &task.ReporterID,
		&executors, &task.Confidential, &deadline, &task.RewardsPoints, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	task.Status = models.Status(status)
	task.Priority = models.Priority(priority)
	task.ExecutorIDs = make([]int, len(executors))
	for i, id := range executors {
		task.ExecutorIDs[i] = int(id)
	}
	if deadline != nil {
		d := models.DateOf(*deadline)
		task.Deadline = &d
	}
	return &task, nil
}

func deadlineParam(d *models.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// fitsInt4 reports whether id can be bound to an INTEGER column.
func fitsInt4(id int) bool {
	return id >= math.MinInt32 && id <= math.MaxInt32
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
