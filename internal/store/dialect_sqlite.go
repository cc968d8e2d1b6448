package store

type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) NewParamBuilder() ParamBuilder {
	return &sqliteParamBuilder{}
}

func (d *SQLiteDialect) ColumnType(fieldType string, precision int) string {
	switch fieldType {
	case "int":
		return "INTEGER"
	case "decimal":
		return "REAL"
	case "date", "timestamp":
		// stored as ISO8601 text
		return "TEXT"
	default:
		return "TEXT"
	}
}

func (d *SQLiteDialect) NowExpr() string { return "CURRENT_TIMESTAMP" }
