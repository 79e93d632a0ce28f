package parser

// Statement is the root interface for all script statements.
type Statement interface {
	stmtNode()
}

// ----- CREATE TABLE -----
type ColumnDef struct {
	Name string
	Type string // upper-cased type word, e.g. "INT", "STRING"
	Size int    // STRING(n) / BLOB(n); 0 when absent
}

type CreateTableStmt struct {
	Database  string
	TableName string
	Columns   []ColumnDef
}

func (*CreateTableStmt) stmtNode() {}

// ----- INSERT -----
type InsertStmt struct {
	Database  string
	TableName string
	Rows      [][]Expr
}

func (*InsertStmt) stmtNode() {}

// ----- SELECT -----

// SelectStmt reads a table ("db.table") or a heap result (bare name).
type SelectStmt struct {
	Source  string
	Where   *WhereEq
	OrderBy string // raw sort spec, resolved by the planner
	Into    string
}

func (*SelectStmt) stmtNode() {}

// ----- DROP RESULT -----
type DropResultStmt struct {
	Name string
}

func (*DropResultStmt) stmtNode() {}

// ----- Expressions -----
type Expr interface {
	exprNode()
}

// LiteralExpr holds nil, bool, int64, float64 or string.
type LiteralExpr struct {
	Value any
}

func (*LiteralExpr) exprNode() {}

type WhereEq struct {
	Column string
	Value  Expr
}
