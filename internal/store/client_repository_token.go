package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-drive-client/internal/logger"
)

type tokenRepository struct {
	*DB
	logger *logger.Logger
}

// NewTokenRepository returns the SQLite-backed [TokenRepository].
func NewTokenRepository(db *DB, logger *logger.Logger) TokenRepository {
	return &tokenRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *tokenRepository) Load(ctx context.Context) (string, string, error) {
	query, args, err := buildLoadTokensQuery()
	if err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Load").Msg("failed to build load query")
		return "", "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Load").Msg("failed to query session tokens")
		return "", "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			r.logger.Err(err).Str("func", "tokenRepository.Load").Msg("failed to scan session token row")
			return "", "", fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		values[key] = value
	}
	if err = rows.Err(); err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Load").Msg("failed to iterate session token rows")
		return "", "", fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	access, hasAccess := values[keyAccess]
	refresh, hasRefresh := values[keyRefresh]
	if !hasAccess || !hasRefresh || access == "" {
		return "", "", ErrTokenPairNotFound
	}

	return access, refresh, nil
}

func (r *tokenRepository) Save(ctx context.Context, access, refresh string) error {
	query, args, err := buildSaveTokensQuery(access, refresh)
	if err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Save").Msg("failed to build save query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Save").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Save").Msg("failed to upsert session tokens")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Save").Msg("failed to commit session tokens")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	r.logger.Debug().Str("func", "tokenRepository.Save").Msg("session tokens saved")
	return nil
}

func (r *tokenRepository) Delete(ctx context.Context) error {
	query, args, err := buildDeleteTokensQuery()
	if err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Delete").Msg("failed to build delete query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "tokenRepository.Delete").Msg("failed to delete session tokens")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	r.logger.Debug().Str("func", "tokenRepository.Delete").Msg("session tokens deleted")
	return nil
}
