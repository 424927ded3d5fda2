// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	sessionTokensTable = "session_tokens"

	keyAccess  = "access"
	keyRefresh = "refresh"

	upsertTokenSuffix = "ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP"
)

var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildSaveTokensQuery(access, refresh string) (string, []any, error) {
	return sqlite.
		Insert(sessionTokensTable).
		Columns("key", "value").
		Values(keyAccess, access).
		Values(keyRefresh, refresh).
		Suffix(upsertTokenSuffix).
		ToSql()
}

func buildLoadTokensQuery() (string, []any, error) {
	return sqlite.
		Select("key", "value").
		From(sessionTokensTable).
		Where(sq.Eq{"key": []string{keyAccess, keyRefresh}}).
		ToSql()
}

func buildDeleteTokensQuery() (string, []any, error) {
	return sqlite.
		Delete(sessionTokensTable).
		Where(sq.Eq{"key": []string{keyAccess, keyRefresh}}).
		ToSql()
}
