package planner

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/dsv"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/sortkey"
	"github.com/tuannm99/novarow/internal/sql/parser"
)

// Resolver gives the planner the schemas it needs.
type Resolver interface {
	TableSchema(database, table string) (*record.Schema, error)
	ResultSchema(name string) (*record.Schema, error)
}

func compileErr(format string, args ...any) error {
	return errkind.ScriptCompile.New(fmt.Sprintf(format, args...))
}

// BuildPlan builds an executable plan from an AST Statement.
func BuildPlan(stmt parser.Statement, r Resolver, keys sortkey.Factory) (Plan, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return buildCreateTablePlan(s)
	case *parser.InsertStmt:
		return buildInsertPlan(s, r)
	case *parser.SelectStmt:
		return buildScanPlan(s, r, keys)
	case *parser.DropResultStmt:
		return &DropResultPlan{Name: s.Name}, nil
	default:
		return nil, compileErr("unsupported statement type %T", stmt)
	}
}

func buildCreateTablePlan(s *parser.CreateTableStmt) (Plan, error) {
	cols := make([]record.Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		aff, err := mapType(c.Type)
		if err != nil {
			return nil, err
		}
		cols = append(cols, record.Column{Name: c.Name, Affinity: aff, Size: c.Size})
	}
	schema, err := record.NewSchema(cols...)
	if err != nil {
		return nil, compileErr("%v", err)
	}
	return &CreateTablePlan{Database: s.Database, TableName: s.TableName, Schema: schema}, nil
}

func buildInsertPlan(s *parser.InsertStmt, r Resolver) (Plan, error) {
	schema, err := r.TableSchema(s.Database, s.TableName)
	if err != nil {
		return nil, compileErr("%v", err)
	}

	rows := make([]record.Record, 0, len(s.Rows))
	for n, exprs := range s.Rows {
		if len(exprs) != schema.Len() {
			return nil, compileErr("row %d has %d values, %s.%s has %d columns",
				n+1, len(exprs), s.Database, s.TableName, schema.Len())
		}
		b := record.NewBuilder(len(exprs))
		for i, e := range exprs {
			c, err := literalCell(schema.Column(i), e)
			if err != nil {
				return nil, err
			}
			_ = b.Append(c)
		}
		rows = append(rows, b.Finish())
	}
	return &InsertPlan{Database: s.Database, TableName: s.TableName, Rows: rows}, nil
}

func buildScanPlan(s *parser.SelectStmt, r Resolver, keys sortkey.Factory) (Plan, error) {
	p := &ScanPlan{Source: s.Source, Into: s.Into}

	var err error
	if db, table, ok := strings.Cut(s.Source, "."); ok {
		p.FromTable = true
		p.Schema, err = r.TableSchema(db, table)
	} else {
		p.Schema, err = r.ResultSchema(s.Source)
	}
	if err != nil {
		return nil, compileErr("%v", err)
	}
	if p.Into == "" {
		p.Into = s.Source
	}

	if s.Where != nil {
		i := p.Schema.ColumnIndex(s.Where.Column)
		if i == record.NotFound {
			return nil, compileErr("unknown column %q in WHERE", s.Where.Column)
		}
		c, err := literalCell(p.Schema.Column(i), s.Where.Value)
		if err != nil {
			return nil, err
		}
		p.Filter = &Filter{Column: i, Value: c}
	}

	if s.OrderBy != "" {
		key, err := keys.Render(p.Schema, s.OrderBy)
		if err != nil {
			return nil, err
		}
		if err := key.Validate(p.Schema.Len()); err != nil {
			return nil, err
		}
		p.Key = key
	}
	return p, nil
}

func literalCell(col record.Column, e parser.Expr) (cell.Cell, error) {
	lit, ok := e.(*parser.LiteralExpr)
	if !ok {
		return cell.Cell{}, compileErr("only literal expressions are supported")
	}
	if lit.Value == nil {
		return cell.Null(col.Affinity), nil
	}
	var (
		c   cell.Cell
		err error
	)
	if str, ok := lit.Value.(string); ok && col.Affinity != cell.String && col.Affinity != cell.Blob {
		c, err = dsv.ParseCell(col.Affinity, str)
	} else {
		c, err = cell.As(col.Affinity, lit.Value)
	}
	if err != nil {
		return cell.Cell{}, compileErr("column %q: %v", col.Name, err)
	}
	return c, nil
}

// mapType accepts affinity names plus a few SQL spellings.
func mapType(t string) (cell.Affinity, error) {
	switch strings.ToUpper(t) {
	case "INTEGER", "BIGINT":
		return cell.Int, nil
	case "TEXT", "VARCHAR":
		return cell.String, nil
	case "BOOLEAN":
		return cell.Bool, nil
	case "FLOAT", "REAL":
		return cell.Double, nil
	case "BYTES":
		return cell.Blob, nil
	case "TIMESTAMP":
		return cell.Date, nil
	case "DECIMAL":
		return cell.Money, nil
	case "INTERVAL":
		return cell.Span, nil
	}
	a, err := cell.ParseAffinity(t)
	if err != nil {
		return 0, compileErr("unsupported column type: %s", t)
	}
	return a, nil
}
