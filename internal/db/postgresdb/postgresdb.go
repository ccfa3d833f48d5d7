// Package postgresdb provides a PostgreSQL-based implementation of the storage interface
// for users, trips and follow edges. The schema is managed by goose migrations
// embedded into the binary.
package postgresdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresDB is a PostgreSQL-backed implementation of the travel-journal storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.UpContext(ctx, result.database, "migrations"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w",
				err,
			)
	}

	return result, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	userID := usr.ID
	if userID == "" {
		userID = models.NewID()
	}
	createdAt := usr.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO users (id, username, email, profile_pic, created_at)
				VALUES ($1, $2, $3, $4, $5)
		`,
		userID,
		usr.Username,
		usr.Email,
		usr.ProfilePicture,
		createdAt,
	)
	if err != nil {
		return "", err
	}

	return userID, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	return db.findUser(
		ctx,
		`SELECT id, username, email, profile_pic, created_at FROM users WHERE id = $1`,
		userID,
	)
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return db.findUser(
		ctx,
		`SELECT id, username, email, profile_pic, created_at FROM users WHERE email = $1`,
		email,
	)
}

func (db *PostgresDB) findUser(ctx context.Context, query string, arg string) (*user.User, error) {
	row := db.database.QueryRowContext(ctx, query, arg)

	var usr user.User
	err := row.Scan(&usr.ID, &usr.Username, &usr.Email, &usr.ProfilePicture, &usr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &usr, nil
}

func (db *PostgresDB) GetUsers(ctx context.Context) ([]user.User, error) {
	return db.queryUsers(
		ctx,
		db.database,
		`SELECT id, username, email, profile_pic, created_at FROM users ORDER BY id`,
	)
}

func (db *PostgresDB) SearchUsersByUsername(ctx context.Context, pattern string) ([]user.User, error) {
	return db.queryUsers(
		ctx,
		db.database,
		`
			SELECT id, username, email, profile_pic, created_at
				FROM users
				WHERE username ILIKE '%' || $1::text || '%'
				ORDER BY id
				LIMIT $2
		`,
		likeEscaper.Replace(pattern),
		storage.SearchLimit,
	)
}

func (db *PostgresDB) queryUsers(ctx context.Context, database queryer, query string, args ...interface{}) ([]user.User, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []user.User{}
	for rows.Next() {
		var usr user.User
		if err := rows.Scan(&usr.ID, &usr.Username, &usr.Email, &usr.ProfilePicture, &usr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (db *PostgresDB) CreateTrip(ctx context.Context, trip *models.Trip) (string, error) {
	tripID := trip.ID
	if tripID == "" {
		tripID = models.NewID()
	}
	createdAt := trip.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO trips (id, user_id, country, place_name, description, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
		`,
		tripID,
		trip.UserID,
		trip.Country,
		trip.PlaceName,
		trip.Description,
		createdAt,
	)
	if err != nil {
		return "", err
	}

	return tripID, nil
}

func (db *PostgresDB) GetTrips(ctx context.Context) ([]models.Trip, error) {
	return db.queryTrips(
		ctx,
		`SELECT id, user_id, country, place_name, description, created_at FROM trips ORDER BY id`,
	)
}

func (db *PostgresDB) GetTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	return db.queryTrips(
		ctx,
		`SELECT id, user_id, country, place_name, description, created_at FROM trips WHERE user_id = $1 ORDER BY id`,
		userID,
	)
}

func (db *PostgresDB) queryTrips(ctx context.Context, query string, args ...interface{}) ([]models.Trip, error) {
	rows, err := db.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Trip{}
	for rows.Next() {
		var trip models.Trip
		err := rows.Scan(&trip.ID, &trip.UserID, &trip.Country, &trip.PlaceName, &trip.Description, &trip.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ToggleFollowEdge deletes the edge inside a transaction and inserts it when
// nothing was deleted. The primary key turns a concurrent duplicate insert
// into a no-op.
func (db *PostgresDB) ToggleFollowEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	transaction, err := db.database.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	deleted, err := transaction.ExecContext(
		ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID,
		followeeID,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := deleted.RowsAffected()
	if err != nil {
		return false, err
	}

	following := rowsAffected == 0
	if following {
		_, err = transaction.ExecContext(
			ctx,
			`
				INSERT INTO follows (follower_id, followee_id)
					VALUES ($1, $2)
					ON CONFLICT (follower_id, followee_id) DO NOTHING
			`,
			followerID,
			followeeID,
		)
		if err != nil {
			return false, err
		}
	}

	if err := transaction.Commit(); err != nil {
		return false, err
	}

	return following, nil
}

func (db *PostgresDB) GetFollowees(ctx context.Context, followerID string) ([]string, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at, followee_id`,
		followerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var followeeID string
		if err := rows.Scan(&followeeID); err != nil {
			return nil, err
		}
		result = append(result, followeeID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (db *PostgresDB) GetStats(ctx context.Context) (models.InternalStatsResponse, error) {
	var stats models.InternalStatsResponse
	err := db.database.QueryRowContext(
		ctx,
		`
			SELECT
				(SELECT COUNT(*) FROM users),
				(SELECT COUNT(*) FROM trips),
				(SELECT COUNT(*) FROM follows)
		`,
	).Scan(&stats.Users, &stats.Trips, &stats.Follows)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return stats, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
