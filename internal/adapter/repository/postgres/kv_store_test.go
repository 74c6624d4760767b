package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/lib/pq"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKVStore_Get(t *testing.T) {
	selectQuery := regexp.QuoteMeta(`SELECT payload FROM kv_store WHERE key = $1`)

	testCases := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		want      string
		expectErr error
		anyErr    bool
	}{
		{
			name: "Existing key",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).WithArgs("leads").
					WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`[]`)))
			},
			want: "[]",
		},
		{
			name: "Missing key",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).WithArgs("leads").
					WillReturnRows(sqlmock.NewRows([]string{"payload"}))
			},
			expectErr: domain.ErrNotFound,
		},
		{
			name: "Table not created yet",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).WithArgs("leads").
					WillReturnError(&pq.Error{Code: "42P01"})
			},
			expectErr: domain.ErrNotFound,
		},
		{
			name: "Database failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).WithArgs("leads").
					WillReturnError(errors.New("connection refused"))
			},
			anyErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()
			tc.setup(mock)

			got, err := NewKVStore(db, discardLogger()).Get(context.Background(), "leads")
			switch {
			case tc.expectErr != nil:
				if !errors.Is(err, tc.expectErr) {
					t.Errorf("expected %v, got %v", tc.expectErr, err)
				}
			case tc.anyErr:
				if err == nil || errors.Is(err, domain.ErrNotFound) {
					t.Errorf("expected a database error, got %v", err)
				}
			default:
				if err != nil || string(got) != tc.want {
					t.Errorf("expected %q, got %q, %v", tc.want, got, err)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestKVStore_PutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT INTO kv_store .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("leads", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewKVStore(db, discardLogger()).Put(context.Background(), "leads", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestKVStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := NewKVStore(db, discardLogger()).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
