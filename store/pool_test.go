package store_test

import (
	"context"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iimin/restosim/store"
)

func TestNewPGXPoolRejectsMalformedDSN(t *testing.T) {
	_, err := store.NewPGXPool(context.Background(), store.PoolConfig{
		DSN: "://not-a-dsn",
	})

	assert.Error(t, err)
}

func TestPSQLBuildsPreparedStatements(t *testing.T) {
	sql, args, err := store.PSQL.From("client").
		Select(goqu.C("client_id")).
		Where(goqu.C("client_id").Eq(7)).
		Prepared(true).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, `SELECT "client_id" FROM "client" WHERE ("client_id" = $1)`, sql)
	assert.Equal(t, []any{int64(7)}, args)
}
