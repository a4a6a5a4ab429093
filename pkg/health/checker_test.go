package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCheckerConfig(t *testing.T) {
	assert.Equal(t, 2*time.Second, DefaultCheckerConfig().Timeout)
}

func TestDatabaseChecker(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		err := DatabaseChecker(nil)()
		require.Error(t, err)
		assert.Equal(t, "database connection is nil", err.Error())
	})

	t.Run("healthy", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()

		assert.NoError(t, DatabaseChecker(db)())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err = DatabaseCheckerWithConfig(db, CheckerConfig{Timeout: time.Second})()
		assert.EqualError(t, err, "connection refused")
	})
}

func TestRedisChecker(t *testing.T) {
	assert.Error(t, RedisChecker(nil)())

	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, RedisChecker(client)())

	mock.ExpectPing().SetErr(errors.New("i/o timeout"))
	assert.Error(t, RedisChecker(client)())
}

func TestHTTPEndpointChecker(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		expectErr bool
	}{
		{"ok", http.StatusOK, false},
		{"redirect", http.StatusFound, false},
		{"not found", http.StatusNotFound, true},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusFound {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := HTTPEndpointChecker(server.URL)()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPEndpointChecker_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	err := HTTPEndpointCheckerWithConfig(server.URL, CheckerConfig{Timeout: 50 * time.Millisecond})()
	assert.Error(t, err)
}
