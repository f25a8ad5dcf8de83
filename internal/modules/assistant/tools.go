package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// toolDef describes one callable tool in a provider-neutral shape; the
// provider adapters translate it to their own wire format.
type toolDef struct {
	Name        string
	Description string
	Properties  map[string]interface{}
	Required    []string
}

func toolDefs() []toolDef {
	return []toolDef{
		{
			Name:        "listTables",
			Description: "List the attendance tables available to you.",
			Properties:  map[string]interface{}{},
		},
		{
			Name:        "getTableSchema",
			Description: "Describe the columns of one attendance table.",
			Properties: map[string]interface{}{
				"table": map[string]interface{}{"type": "string", "description": "Table name, must start with attendance_"},
			},
			Required: []string{"table"},
		},
		{
			Name:        "getTableRowCount",
			Description: "Count the rows of one attendance table.",
			Properties: map[string]interface{}{
				"table": map[string]interface{}{"type": "string"},
			},
			Required: []string{"table"},
		},
		{
			Name:        "selectQuery",
			Description: "Run a read-only SELECT against the attendance tables and get the rows back as JSON.",
			Properties: map[string]interface{}{
				"sql": map[string]interface{}{"type": "string", "description": "A single SELECT statement"},
			},
			Required: []string{"sql"},
		},
		{
			Name:        "executeSql",
			Description: "Run a single mutating SQL statement. DROP TABLE and TRUNCATE are refused unless the statement contains --CONFIRMED.",
			Properties: map[string]interface{}{
				"sql": map[string]interface{}{"type": "string"},
			},
			Required: []string{"sql"},
		},
		{
			Name:        "executeBatch",
			Description: "Run several mutating statements in one transaction. All statements are guarded like executeSql.",
			Properties: map[string]interface{}{
				"statements": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
			},
			Required: []string{"statements"},
		},
		{
			Name:        "insertRow",
			Description: "Insert one row into an attendance table from a JSON object of column values.",
			Properties: map[string]interface{}{
				"table": map[string]interface{}{"type": "string"},
				"data":  map[string]interface{}{"type": "object"},
			},
			Required: []string{"table", "data"},
		},
		{
			Name:        "updateRows",
			Description: "Update rows of an attendance table. Provide the SET values as a JSON object and a SQL WHERE clause (without the WHERE keyword).",
			Properties: map[string]interface{}{
				"table": map[string]interface{}{"type": "string"},
				"set":   map[string]interface{}{"type": "object"},
				"where": map[string]interface{}{"type": "string"},
			},
			Required: []string{"table", "set", "where"},
		},
	}
}

// toolRunner executes guarded tools against the live database.
type toolRunner struct {
	db *gorm.DB
}

// Run dispatches one tool call. Tool failures come back as a payload, not
// an error: the model is supposed to see them and adjust.
func (r *toolRunner) Run(ctx context.Context, name string, args json.RawMessage) string {
	out, err := r.dispatch(ctx, name, args)
	if err != nil {
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(payload)
	}
	return out
}

func (r *toolRunner) dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	switch name {
	case "listTables":
		return r.listTables(ctx)
	case "getTableSchema":
		var in struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.tableSchema(ctx, in.Table)
	case "getTableRowCount":
		var in struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.tableRowCount(ctx, in.Table)
	case "selectQuery":
		var in struct {
			SQL string `json:"sql"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.selectQuery(ctx, in.SQL)
	case "executeSql":
		var in struct {
			SQL string `json:"sql"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.executeSQL(ctx, in.SQL)
	case "executeBatch":
		var in struct {
			Statements []string `json:"statements"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.executeBatch(ctx, in.Statements)
	case "insertRow":
		var in struct {
			Table string                 `json:"table"`
			Data  map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.insertRow(ctx, in.Table, in.Data)
	case "updateRows":
		var in struct {
			Table string                 `json:"table"`
			Set   map[string]interface{} `json:"set"`
			Where string                 `json:"where"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", err
		}
		return r.updateRows(ctx, in.Table, in.Set, in.Where)
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func (r *toolRunner) listTables(ctx context.Context) (string, error) {
	var tables []string
	err := r.db.WithContext(ctx).
		Raw("SHOW TABLES LIKE ?", tablePrefix+"%").
		Scan(&tables).Error
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]interface{}{"tables": tables})
}

func (r *toolRunner) tableSchema(ctx context.Context, table string) (string, error) {
	if err := GuardTableName(table); err != nil {
		return "", err
	}
	var columns []map[string]interface{}
	rows, err := r.db.WithContext(ctx).Raw("DESCRIBE " + table).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()
	columns, err = scanRows(rows)
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]interface{}{"table": table, "columns": columns})
}

func (r *toolRunner) tableRowCount(ctx context.Context, table string) (string, error) {
	if err := GuardTableName(table); err != nil {
		return "", err
	}
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return "", err
	}
	return marshalJSON(map[string]interface{}{"table": table, "rows": count})
}

func (r *toolRunner) selectQuery(ctx context.Context, sql string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(sql)), "select") {
		return "", fmt.Errorf("selectQuery only accepts SELECT statements")
	}
	if err := GuardStatement(sql); err != nil {
		return "", err
	}

	rows, err := r.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]interface{}{"rows": out, "count": len(out)})
}

func (r *toolRunner) executeSQL(ctx context.Context, sql string) (string, error) {
	if err := GuardStatement(sql); err != nil {
		return "", err
	}
	res := r.db.WithContext(ctx).Exec(sql)
	if res.Error != nil {
		return "", res.Error
	}
	return marshalJSON(map[string]interface{}{"rows_affected": res.RowsAffected})
}

func (r *toolRunner) executeBatch(ctx context.Context, statements []string) (string, error) {
	if len(statements) == 0 {
		return "", ErrEmptyStatement
	}
	for _, stmt := range statements {
		if err := GuardStatement(stmt); err != nil {
			return "", err
		}
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range statements {
			res := tx.Exec(stmt)
			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]interface{}{
		"statements":    len(statements),
		"rows_affected": affected,
	})
}

func (r *toolRunner) insertRow(ctx context.Context, table string, data map[string]interface{}) (string, error) {
	if err := GuardTableName(table); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("data must not be empty")
	}
	if err := r.db.WithContext(ctx).Table(table).Create(data).Error; err != nil {
		return "", err
	}
	return marshalJSON(map[string]interface{}{"inserted": 1})
}

func (r *toolRunner) updateRows(ctx context.Context, table string, set map[string]interface{}, where string) (string, error) {
	if err := GuardTableName(table); err != nil {
		return "", err
	}
	if len(set) == 0 {
		return "", fmt.Errorf("set must not be empty")
	}
	if strings.TrimSpace(where) == "" {
		return "", fmt.Errorf("where clause is required, updateRows never updates a whole table")
	}
	if err := GuardStatement("UPDATE " + table + " SET x = 1 WHERE " + where); err != nil {
		return "", err
	}

	res := r.db.WithContext(ctx).Table(table).Where(where).Updates(set)
	if res.Error != nil {
		return "", res.Error
	}
	return marshalJSON(map[string]interface{}{"rows_affected": res.RowsAffected})
}

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
