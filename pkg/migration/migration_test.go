package migration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	pkgerrors "github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	mockQuestDB "github.com/muhammadchandra19/bar-replay/pkg/questdb/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	createOHLC = "CREATE TABLE ohlc (timestamp TIMESTAMP);"
	dropOHLC   = "DROP TABLE ohlc;"
	addIndex   = "ALTER TABLE ohlc ALTER COLUMN symbol ADD INDEX;"
)

func writeMigrations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"20240101000000_create_ohlc.up.sql":   createOHLC + "\n",
		"20240101000000_create_ohlc.down.sql": dropOHLC,
		"20240102000000_index_symbol.up.sql":  addIndex,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func expectApplied(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface, ids ...string) {
	client.EXPECT().Query(gomock.Any(), selectApplied).Return(rows, nil)
	for _, id := range ids {
		id := id
		rows.EXPECT().Next().Return(true)
		rows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
			*dest[0].(*string) = id
			return nil
		})
	}
	rows.EXPECT().Next().Return(false)
	rows.EXPECT().Err().Return(nil)
	rows.EXPECT().Close()
}

func TestMigration_LoadMigrations(t *testing.T) {
	dir := writeMigrations(t)
	runner := NewRunner(nil, dir, logger.NewNop())

	migrations, err := runner.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "20240101000000_create_ohlc", migrations[0].ID)
	assert.Equal(t, "create_ohlc", migrations[0].Name)
	assert.Equal(t, 2024, migrations[0].Timestamp.Year())
	assert.Equal(t, createOHLC, migrations[0].UpSQL)
	assert.Equal(t, dropOHLC, migrations[0].DownSQL)

	assert.Equal(t, "index_symbol", migrations[1].Name)
	assert.Empty(t, migrations[1].DownSQL)
}

func TestMigration_MigrateUp(t *testing.T) {
	testCases := []struct {
		name     string
		steps    int
		mockFn   func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface)
		assertFn func(t *testing.T, err error)
	}{
		{
			name: "success - applies all pending",
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				expectApplied(client, rows)
				gomock.InOrder(
					client.EXPECT().Exec(gomock.Any(), createOHLC).Return(nil),
					client.EXPECT().Exec(gomock.Any(), insertApplied, "20240101000000_create_ohlc", "create_ohlc").Return(nil),
					client.EXPECT().Exec(gomock.Any(), addIndex).Return(nil),
					client.EXPECT().Exec(gomock.Any(), insertApplied, "20240102000000_index_symbol", "index_symbol").Return(nil),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "success - skips applied",
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				expectApplied(client, rows, "20240101000000_create_ohlc")
				client.EXPECT().Exec(gomock.Any(), addIndex).Return(nil)
				client.EXPECT().Exec(gomock.Any(), insertApplied, "20240102000000_index_symbol", "index_symbol").Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "success - limited steps",
			steps: 1,
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				expectApplied(client, rows)
				client.EXPECT().Exec(gomock.Any(), createOHLC).Return(nil)
				client.EXPECT().Exec(gomock.Any(), insertApplied, "20240101000000_create_ohlc", "create_ohlc").Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "error - exec fails",
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				expectApplied(client, rows)
				client.EXPECT().Exec(gomock.Any(), createOHLC).Return(errors.New("table exists"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.Equal(t, string(pkgerrors.QuestDBMigrationError), pkgerrors.CodeOf(err))
			},
		},
		{
			name: "error - applied query fails",
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				client.EXPECT().Query(gomock.Any(), selectApplied).Return(nil, errors.New("connection refused"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.Equal(t, string(pkgerrors.QuestDBQueryError), pkgerrors.CodeOf(err))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mockQuestDB.NewMockQuestDBClient(ctrl)
			rows := mockQuestDB.NewMockRowsInterface(ctrl)
			tc.mockFn(client, rows)

			runner := NewRunner(client, writeMigrations(t), logger.NewNop())
			tc.assertFn(t, runner.MigrateUp(context.Background(), tc.steps))
		})
	}
}

func TestMigration_MigrateDown(t *testing.T) {
	testCases := []struct {
		name     string
		steps    int
		mockFn   func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface)
		assertFn func(t *testing.T, err error)
	}{
		{
			name:  "success - reverts latest",
			steps: 1,
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				expectApplied(client, rows, "20240101000000_create_ohlc")
				client.EXPECT().Exec(gomock.Any(), dropOHLC).Return(nil)
				client.EXPECT().Exec(gomock.Any(), deleteApplied, "20240101000000_create_ohlc").Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "error - missing down sql",
			steps: 1,
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {
				expectApplied(client, rows, "20240101000000_create_ohlc", "20240102000000_index_symbol")
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.Equal(t, string(pkgerrors.QuestDBMigrationError), pkgerrors.CodeOf(err))
			},
		},
		{
			name:   "error - zero steps",
			mockFn: func(client *mockQuestDB.MockQuestDBClient, rows *mockQuestDB.MockRowsInterface) {},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.Equal(t, string(pkgerrors.QuestDBMigrationError), pkgerrors.CodeOf(err))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mockQuestDB.NewMockQuestDBClient(ctrl)
			rows := mockQuestDB.NewMockRowsInterface(ctrl)
			tc.mockFn(client, rows)

			runner := NewRunner(client, writeMigrations(t), logger.NewNop())
			tc.assertFn(t, runner.MigrateDown(context.Background(), tc.steps))
		})
	}
}
