// internal/search/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/models"
	"scout-search/internal/search/querybuilder"

	"github.com/lib/pq"
)

const playerColumns = `id, name, position, age, nationality, club, market_value,
	league, height_cm, preferred_foot, goals, assists, appearances,
	contract_expiry, data_quality`

// PostgresStore reads candidates from the players table.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

// FetchCandidates runs a parameterized query built from the filter spec and
// returns one page of players plus the unpaginated total.
func (s *PostgresStore) FetchCandidates(ctx context.Context, spec *querybuilder.FilterSpec) (*CandidateSet, error) {
	where, args := buildConditions(spec)

	countQuery := "SELECT COUNT(*) FROM players" + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewStoreQueryTimeoutError()
		}
		return nil, errors.NewStoreQueryFailedError(err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM players%s ORDER BY %s LIMIT $%d OFFSET $%d",
		playerColumns, where, orderBy(spec), len(args)+1, len(args)+2,
	)
	args = append(args, spec.PageSize, spec.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewStoreQueryTimeoutError()
		}
		return nil, errors.NewStoreQueryFailedError(err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		var contractExpiry sql.NullTime
		var preferredFoot sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Position, &p.Age, &p.Nationality, &p.Club,
			&p.MarketValue, &p.League, &p.HeightCm, &preferredFoot,
			&p.Goals, &p.Assists, &p.Appearances, &contractExpiry, &p.DataQuality,
		); err != nil {
			return nil, errors.NewStoreQueryFailedError(err)
		}
		if contractExpiry.Valid {
			t := contractExpiry.Time
			p.ContractExpiry = &t
		}
		if preferredFoot.Valid {
			p.PreferredFoot = preferredFoot.String
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreQueryFailedError(err)
	}

	s.logger.Debug("candidates fetched", map[string]interface{}{
		"returned": len(players),
		"total":    total,
	})

	return &CandidateSet{Players: players, Total: total}, nil
}

// buildConditions renders the WHERE clause with positional placeholders.
func buildConditions(spec *querybuilder.FilterSpec) (string, []interface{}) {
	var conds []string
	var args []interface{}

	next := func() int { return len(args) + 1 }

	if len(spec.Positions) > 0 {
		conds = append(conds, fmt.Sprintf("position = ANY($%d)", next()))
		args = append(args, pq.Array(spec.Positions))
	}
	if len(spec.Nationalities) > 0 {
		conds = append(conds, fmt.Sprintf("nationality = ANY($%d)", next()))
		args = append(args, pq.Array(spec.Nationalities))
	}
	if len(spec.Leagues) > 0 {
		conds = append(conds, fmt.Sprintf("league = ANY($%d)", next()))
		args = append(args, pq.Array(spec.Leagues))
	}
	if len(spec.Clubs) > 0 {
		conds = append(conds, fmt.Sprintf("club = ANY($%d)", next()))
		args = append(args, pq.Array(spec.Clubs))
	}

	if spec.AgeMin != nil {
		conds = append(conds, fmt.Sprintf("age >= $%d", next()))
		args = append(args, *spec.AgeMin)
	}
	if spec.AgeMax != nil {
		conds = append(conds, fmt.Sprintf("age <= $%d", next()))
		args = append(args, *spec.AgeMax)
	}
	if spec.MarketValueMin != nil {
		conds = append(conds, fmt.Sprintf("market_value >= $%d", next()))
		args = append(args, *spec.MarketValueMin)
	}
	if spec.MarketValueMax != nil {
		conds = append(conds, fmt.Sprintf("market_value <= $%d", next()))
		args = append(args, *spec.MarketValueMax)
	}
	if spec.HeightMin != nil {
		conds = append(conds, fmt.Sprintf("height_cm >= $%d", next()))
		args = append(args, *spec.HeightMin)
	}
	if spec.HeightMax != nil {
		conds = append(conds, fmt.Sprintf("height_cm <= $%d", next()))
		args = append(args, *spec.HeightMax)
	}

	if spec.TransferStatus != "" && spec.TransferStatus != models.TransferAny {
		conds = append(conds, fmt.Sprintf("transfer_status = $%d", next()))
		args = append(args, spec.TransferStatus)
	}
	if spec.PreferredFoot != "" {
		conds = append(conds, fmt.Sprintf("preferred_foot = $%d", next()))
		args = append(args, spec.PreferredFoot)
	}

	if spec.DataQualityThreshold > 0 {
		conds = append(conds, fmt.Sprintf("data_quality >= $%d", next()))
		args = append(args, spec.DataQualityThreshold)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderBy maps the API sort to an index-backed column. Relevance has no SQL
// meaning here, so it degrades to data quality which approximates record
// usefulness for ranking downstream.
func orderBy(spec *querybuilder.FilterSpec) string {
	column := "data_quality"
	switch spec.SortBy {
	case "age":
		column = "age"
	case "market_value":
		column = "market_value"
	case "name":
		column = "name"
	}

	direction := "DESC"
	if spec.SortDirection == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}
