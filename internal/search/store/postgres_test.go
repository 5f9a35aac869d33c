// internal/search/store/postgres_test.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	commonerrors "scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/search/params"
	"scout-search/internal/search/querybuilder"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func playerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "position", "age", "nationality", "club", "market_value",
		"league", "height_cm", "preferred_foot", "goals", "assists", "appearances",
		"contract_expiry", "data_quality",
	})
}

// ==========================
// Fetch Tests
// ==========================

func TestPostgresStore_FetchCandidates(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db, createTestLogger(t))

	expiry := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players WHERE position = ANY\(\$1\) AND age <= \$2 AND data_quality >= \$3`).
		WithArgs(pq.Array([]string{"ST", "CF"}), 25, 0.4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`(?s)SELECT id, name, position,.+FROM players WHERE position = ANY\(\$1\) AND age <= \$2 AND data_quality >= \$3 ORDER BY data_quality DESC LIMIT \$4 OFFSET \$5`).
		WithArgs(pq.Array([]string{"ST", "CF"}), 25, 0.4, 20, 0).
		WillReturnRows(playerRows().
			AddRow("p1", "Gabriel Souza", "ST", 22, "Brazil", "Cruzeiro", 8_000_000,
				"Serie B", 183, "right", 16, 5, 30, expiry, 0.9).
			AddRow("p2", "Marco Rossi", "CF", 24, "Italy", "Bari", 5_000_000,
				"Serie B", 180, nil, 11, 7, 28, nil, 0.7))

	result, err := store.FetchCandidates(context.Background(), &querybuilder.FilterSpec{
		Positions:            []string{"ST", "CF"},
		AgeMax:               params.IntPtr(25),
		DataQualityThreshold: 0.4,
		Page:                 1,
		PageSize:             20,
	})

	assert.NoError(t, err)
	assert.Equal(t, 42, result.Total)
	assert.Len(t, result.Players, 2)

	assert.Equal(t, "Gabriel Souza", result.Players[0].Name)
	assert.Equal(t, "right", result.Players[0].PreferredFoot)
	if assert.NotNil(t, result.Players[0].ContractExpiry) {
		assert.Equal(t, expiry, *result.Players[0].ContractExpiry)
	}

	// Null columns degrade to zero values.
	assert.Empty(t, result.Players[1].PreferredFoot)
	assert.Nil(t, result.Players[1].ContractExpiry)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchCandidates_EmptySpec(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db, createTestLogger(t))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)SELECT id, name, position,.+FROM players ORDER BY data_quality DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 20).
		WillReturnRows(playerRows())

	result, err := store.FetchCandidates(context.Background(), &querybuilder.FilterSpec{
		Page:     2,
		PageSize: 20,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Players)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchCandidates_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db, createTestLogger(t))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WillReturnError(errors.New("connection reset"))

	_, err := store.FetchCandidates(context.Background(), &querybuilder.FilterSpec{
		Page: 1, PageSize: 20,
	})

	var serr *commonerrors.StandardError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, commonerrors.ErrCodeStoreQueryFailed, serr.Code)
}

func TestPostgresStore_FetchCandidates_CancelledContext(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db, createTestLogger(t))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WillReturnError(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FetchCandidates(ctx, &querybuilder.FilterSpec{Page: 1, PageSize: 20})

	var serr *commonerrors.StandardError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, commonerrors.ErrCodeStoreQueryTimeout, serr.Code)
}

// ==========================
// Condition Building Tests
// ==========================

func TestBuildConditions(t *testing.T) {
	tests := []struct {
		name     string
		spec     *querybuilder.FilterSpec
		expected string
		argCount int
	}{
		{
			name:     "no filters",
			spec:     &querybuilder.FilterSpec{},
			expected: "",
			argCount: 0,
		},
		{
			name: "range bounds",
			spec: &querybuilder.FilterSpec{
				AgeMin:         params.IntPtr(18),
				AgeMax:         params.IntPtr(25),
				MarketValueMax: params.Int64Ptr(10_000_000),
			},
			expected: " WHERE age >= $1 AND age <= $2 AND market_value <= $3",
			argCount: 3,
		},
		{
			name:     "any transfer status is not filtered",
			spec:     &querybuilder.FilterSpec{TransferStatus: "any"},
			expected: "",
			argCount: 0,
		},
		{
			name:     "explicit transfer status",
			spec:     &querybuilder.FilterSpec{TransferStatus: "available"},
			expected: " WHERE transfer_status = $1",
			argCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildConditions(tt.spec)
			assert.Equal(t, tt.expected, where)
			assert.Len(t, args, tt.argCount)
		})
	}
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		sortBy    string
		direction string
		expected  string
	}{
		{"relevance", "desc", "data_quality DESC"},
		{"", "", "data_quality DESC"},
		{"age", "asc", "age ASC"},
		{"market_value", "desc", "market_value DESC"},
		{"name", "asc", "name ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy+" "+tt.direction, func(t *testing.T) {
			spec := &querybuilder.FilterSpec{SortBy: tt.sortBy, SortDirection: tt.direction}
			assert.Equal(t, tt.expected, orderBy(spec))
		})
	}
}
