package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

type recordingHook struct {
	calls int
	err   error
}

func (h *recordingHook) Register(*gorm.DB) error {
	h.calls++
	return h.err
}

func sqliteConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:          "sqlite",
		SQLitePath:      ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
		LogLevel:        "silent",
	}
}

func TestNewDatabase(t *testing.T) {
	t.Run("opens sqlite and registers hooks", func(t *testing.T) {
		hook := &recordingHook{}
		db, err := NewDatabase(sqliteConfig(), zap.NewNop(), WithQueryHook(hook), WithQueryHook(nil))
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, 1, hook.calls)
		assert.NoError(t, db.Ping(context.Background()))

		require.NoError(t, db.AutoMigrate())
		assert.True(t, db.DB.Migrator().HasTable("report_line_values"))
		assert.True(t, db.DB.Migrator().HasTable("calendar_days"))
	})

	t.Run("fails when a hook fails", func(t *testing.T) {
		_, err := NewDatabase(sqliteConfig(), zap.NewNop(), WithQueryHook(&recordingHook{err: errors.New("boom")}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register query hook")
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		cfg := sqliteConfig()
		cfg.Driver = "oracle"
		_, err := NewDatabase(cfg, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestOpenDialector(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "postgres", Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "reporting", SSLMode: "disable"}
	d, err := openDialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.Driver = ""
	d, err = openDialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name(), "postgres is the default driver")
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		err := db.Ping(context.Background())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.Ping(context.Background())
		assert.Error(t, err)
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestClientScope(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	type StoreRow struct {
		ID       int64
		ClientID int64
	}

	t.Run("filters by client", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "store_rows" WHERE client_id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "client_id"}).AddRow(1, 7))

		var rows []StoreRow
		require.NoError(t, db.DB.Scopes(clientScope(7)).Find(&rows).Error)
		assert.Len(t, rows, 1)
	})

	t.Run("zero client matches nothing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "store_rows" WHERE 1 = 0`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "client_id"}))

		var rows []StoreRow
		require.NoError(t, db.DB.Scopes(clientScope(0)).Find(&rows).Error)
		assert.Empty(t, rows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
