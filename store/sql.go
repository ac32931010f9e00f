package store

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
)

// PSQL is the goqu dialect every statement builder in this module
// shares. Builders call Prepared(true) so all values travel as
// positional arguments, never interpolated into the SQL text.
var PSQL = goqu.Dialect("postgres")
