package postgrestest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"

	slogctx "github.com/veqryn/slog-context"

	migrations "github.com/chatassist/dialog-manager/sql"
)

const (
	DBHost     = "localhost"
	DBUser     = "postgres"
	DBPassword = "secret"
	DBName     = "dialog_manager"
	DBSSLMode  = "disable"

	// Owners of the pre-defined test data.
	OwnerOne int64 = 42
	OwnerTwo int64 = 7
)

// DueTime is the "at" timestamp of the pre-defined unsent reminder.
var DueTime = time.Date(2023, 5, 10, 9, 30, 0, 0, time.UTC)

// Start initialises a database instance and returns a connection pool, database port, and termination function.
//
// Database credentials are available as exported variables.
// The database contains pre-defined test data. See INSERT statements in the prepareDB.
func Start(ctx context.Context) (*pgxpool.Pool, nat.Port, func(ctx context.Context)) {
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(DBName),
		postgres.WithUsername(DBUser),
		postgres.WithPassword(DBPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		slogctx.Error(ctx, "Failed to start PostgreSQL", slog.String("error", err.Error()))
		panic(err)
	}

	port, err := pgContainer.MappedPort(ctx, nat.Port("5432"))
	if err != nil {
		slogctx.Error(ctx, "Failed to get mapped port for the PosgtgreSQL container", slog.String("error", err.Error()))
		panic(err)
	}

	dbPool := makeDBConn(ctx, port)
	prepareDB(ctx, dbPool, port)

	terminate := func(ctx context.Context) {
		if err := pgContainer.Terminate(ctx); err != nil {
			slogctx.Error(ctx, "Failed to terminate PosgtgreSQL container", slog.String("error", err.Error()))
			panic(err)
		}
	}

	return dbPool, port, terminate
}

func makeDBConn(ctx context.Context, port nat.Port) *pgxpool.Pool {
	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s", DBHost, DBUser, DBPassword, DBName, port.Port(), DBSSLMode)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		panic(err)
	}

	return pool
}

func migrateDB(ctx context.Context, port nat.Port) {
	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s", DBHost, DBUser, DBPassword, DBName, port.Port(), DBSSLMode)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("pgx"); err != nil {
		panic(err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		panic(err)
	}
}

func prepareDB(ctx context.Context, dbPool *pgxpool.Pool, port nat.Port) {
	migrateDB(ctx, port)

	b := new(pgx.Batch)
	b.Queue(`INSERT INTO records (kind, owner_id, fields) VALUES ('note', $1, '{"title": "Shopping", "body": "milk, eggs"}');`, OwnerOne)
	b.Queue(`INSERT INTO records (kind, owner_id, fields) VALUES ('expense', $1, '{"amount": 12.5, "category": "food", "date": "2023-05-09"}');`, OwnerOne)
	b.Queue(`INSERT INTO records (kind, owner_id, fields) VALUES ('expense', $1, '{"amount": 40, "category": "transport", "date": "2023-05-10"}');`, OwnerOne)
	b.Queue(`INSERT INTO records (kind, owner_id, fields) VALUES ('note', $1, '{"title": "Ideas", "body": "weekend trip"}');`, OwnerTwo)
	b.Queue(`INSERT INTO reminders (owner_id, priority, at, note, repeat, sent) VALUES ($1, 2, $2, 'standup', 'none', FALSE);`, OwnerOne, DueTime)
	b.Queue(`INSERT INTO reminders (owner_id, priority, at, note, repeat, sent) VALUES ($1, 0, $2, 'already delivered', 'none', TRUE);`, OwnerOne, DueTime.Add(-24*time.Hour))
	b.Queue(`INSERT INTO reminders (owner_id, priority, at, note, repeat, sent) VALUES ($1, 1, $2, 'water plants', 'daily', FALSE);`, OwnerTwo, DueTime.Add(time.Hour))

	res := dbPool.SendBatch(ctx, b)
	if err := res.Close(); err != nil {
		panic(err)
	}
}
