package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-triage/internal/common/config"
)

func TestEnsureSchema(t *testing.T) {
	tests := []struct {
		name        string
		execErr     error
		expectError bool
	}{
		{name: "created"},
		{name: "exec fails", execErr: errors.New("permission denied"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS tickets"))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 0))
			}

			err = (&PostgresClient{DB: db}).EnsureSchema(context.Background())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "permission denied")
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTicketSchema_DeclaresTriageTables(t *testing.T) {
	for _, table := range []string{"tickets", "ticket_diagnoses", "alert_recipients"} {
		assert.Contains(t, ticketSchema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, ticketSchema, "contractor_types TEXT[] NOT NULL")
}

func TestPostgresClient_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	client := &PostgresClient{DB: db}
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.NoError(t, (&PostgresClient{}).Close())
}

func TestNewPostgres_AppliesPoolSettings(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, Database: "triage", User: "triage",
		SSLMode: "disable", MaxConnections: 7, MaxIdle: 2,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7, client.DB.Stats().MaxOpenConnections)
}
