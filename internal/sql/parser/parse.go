package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/tuannm99/novarow/internal/errkind"
)

func parseErr(format string, args ...any) error {
	return errkind.ScriptParse.New(fmt.Sprintf(format, args...))
}

// parseIdent validates an identifier (database/table/column/result name).
// Rules:
//   - must be exactly one token (no spaces)
//   - first char: letter or '_'
//   - rest: letter/digit/'_'
func parseIdent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", parseErr("missing identifier")
	}

	parts := strings.Fields(s)
	if len(parts) != 1 {
		return "", parseErr("invalid identifier %q", s)
	}
	id := parts[0]

	for i, r := range id {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return "", parseErr("invalid identifier %q", id)
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "", parseErr("invalid identifier %q", id)
		}
	}

	return id, nil
}

// parseQualified reads "database.table".
func parseQualified(s string) (string, string, error) {
	db, table, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return "", "", parseErr("expected database.table, got %q", strings.TrimSpace(s))
	}
	db, err := parseIdent(db)
	if err != nil {
		return "", "", err
	}
	table, err = parseIdent(table)
	if err != nil {
		return "", "", err
	}
	return db, table, nil
}

// ParseScript splits src into ';'-terminated statements and parses each one. A
// trailing statement without ';' is rejected.
func ParseScript(src string) ([]Statement, error) {
	var stmts []Statement
	for _, raw := range splitStatements(src) {
		st, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	if len(stmts) == 0 {
		return nil, parseErr("empty script")
	}
	return stmts, nil
}

// Parse parses a single statement into an AST.
// Policy: statement MUST end with ';'
func Parse(sql string) (Statement, error) {
	s := strings.TrimSpace(sql)
	if s == "" {
		return nil, parseErr("empty statement")
	}

	if !strings.HasSuffix(s, ";") {
		return nil, parseErr("missing ';' terminator")
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return nil, parseErr("empty statement")
	}

	switch {
	case hasPrefixFold(s, "CREATE TABLE"):
		return parseCreateTable(s)
	case hasPrefixFold(s, "INSERT INTO"):
		return parseInsert(s)
	case hasPrefixFold(s, "SELECT"):
		return parseSelect(s)
	case hasPrefixFold(s, "DROP RESULT"):
		return parseDropResult(s)
	default:
		return nil, parseErr("unsupported statement: %q", s)
	}
}

func parseCreateTable(sql string) (Statement, error) {
	// "CREATE TABLE main.users (id INT, name STRING(32), active BOOL)"
	withoutPrefix := strings.TrimSpace(sql[len("CREATE TABLE"):])
	parts := strings.SplitN(withoutPrefix, "(", 2)
	if len(parts) != 2 || !strings.HasSuffix(withoutPrefix, ")") {
		return nil, parseErr("invalid CREATE TABLE syntax")
	}

	db, table, err := parseQualified(parts[0])
	if err != nil {
		return nil, err
	}

	defPart := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), ")"))
	if defPart == "" {
		return nil, parseErr("invalid CREATE TABLE syntax: empty column list")
	}

	var cols []ColumnDef
	for _, def := range splitComma(defPart) {
		def = strings.TrimSpace(def)
		toks := strings.Fields(def)
		if len(toks) != 2 {
			return nil, parseErr("invalid column def: %q", def)
		}

		colName, err := parseIdent(toks[0])
		if err != nil {
			return nil, err
		}
		typ, size, err := parseType(toks[1])
		if err != nil {
			return nil, err
		}
		cols = append(cols, ColumnDef{Name: colName, Type: typ, Size: size})
	}

	return &CreateTableStmt{Database: db, TableName: table, Columns: cols}, nil
}

// parseType reads "INT" or "STRING(32)".
func parseType(tok string) (string, int, error) {
	name, rest, sized := strings.Cut(tok, "(")
	name = strings.ToUpper(name)
	if !sized {
		return name, 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(rest, ")"))
	if err != nil || !strings.HasSuffix(rest, ")") || n < 0 {
		return "", 0, parseErr("invalid column size in %q", tok)
	}
	return name, n, nil
}

func parseInsert(sql string) (Statement, error) {
	// "INSERT INTO main.users VALUES (1, 'abc', true, null), (2, 'x', false, 1.5)"
	rest := strings.TrimSpace(sql[len("INSERT INTO"):])

	tablePart, valPart := splitKeyword(rest, "VALUES")
	if strings.TrimSpace(valPart) == "" {
		return nil, parseErr("invalid INSERT syntax")
	}

	db, table, err := parseQualified(tablePart)
	if err != nil {
		return nil, err
	}

	var rows [][]Expr
	for _, tuple := range splitComma(valPart) {
		tuple = strings.TrimSpace(tuple)
		if !strings.HasPrefix(tuple, "(") || !strings.HasSuffix(tuple, ")") {
			return nil, parseErr("invalid INSERT values syntax: %q", tuple)
		}
		var exprs []Expr
		for _, rv := range splitComma(tuple[1 : len(tuple)-1]) {
			lit, err := parseLiteral(strings.TrimSpace(rv))
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, &LiteralExpr{Value: lit})
		}
		rows = append(rows, exprs)
	}

	return &InsertStmt{Database: db, TableName: table, Rows: rows}, nil
}

func parseSelect(sql string) (Statement, error) {
	// "SELECT * FROM src [WHERE col = literal] [ORDER BY spec] [INTO name]"
	if !hasPrefixFold(sql, "SELECT * FROM ") {
		return nil, parseErr("only SELECT * FROM <source> is supported")
	}
	rest := strings.TrimSpace(sql[len("SELECT * FROM "):])

	rest, into := splitKeyword(rest, "INTO")
	rest, orderBy := splitKeyword(rest, "ORDER BY")
	srcPart, wherePart := splitKeyword(rest, "WHERE")

	st := &SelectStmt{OrderBy: orderBy}
	src := strings.TrimSpace(srcPart)
	if strings.Contains(src, ".") {
		if _, _, err := parseQualified(src); err != nil {
			return nil, err
		}
	} else if _, err := parseIdent(src); err != nil {
		return nil, err
	}
	st.Source = src

	if strings.TrimSpace(wherePart) != "" {
		we, err := parseWhereEq(wherePart)
		if err != nil {
			return nil, err
		}
		st.Where = we
	}
	if into != "" {
		name, err := parseIdent(into)
		if err != nil {
			return nil, err
		}
		st.Into = name
	}
	return st, nil
}

func parseDropResult(sql string) (Statement, error) {
	name, err := parseIdent(sql[len("DROP RESULT"):])
	if err != nil {
		return nil, err
	}
	return &DropResultStmt{Name: name}, nil
}

func parseWhereEq(s string) (*WhereEq, error) {
	// "col = literal"
	kv := strings.SplitN(strings.TrimSpace(s), "=", 2)
	if len(kv) != 2 {
		return nil, parseErr("only WHERE <col> = <literal> is supported")
	}

	col, err := parseIdent(kv[0])
	if err != nil {
		return nil, err
	}

	lit, err := parseLiteral(strings.TrimSpace(kv[1]))
	if err != nil {
		return nil, err
	}

	return &WhereEq{Column: col, Value: &LiteralExpr{Value: lit}}, nil
}

func parseLiteral(rv string) (any, error) {
	switch up := strings.ToUpper(rv); up {
	case "NULL":
		return nil, nil
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}

	// single-quoted; '' is an escaped quote
	if len(rv) >= 2 && rv[0] == '\'' && rv[len(rv)-1] == '\'' {
		return strings.ReplaceAll(rv[1:len(rv)-1], "''", "'"), nil
	}

	if i, err := strconv.ParseInt(rv, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(rv, 64); err == nil {
		return f, nil
	}

	return nil, parseErr("unsupported literal: %q", rv)
}

// splitKeyword splits "X <keyword> Y" case-insensitively at the first keyword
// outside quotes. returns (X, Y). If keyword not present => (s, "").
//
// NOTE: requires spaces around keyword (" WHERE ").
func splitKeyword(s, keyword string) (string, string) {
	k := " " + keyword + " "
	inQuote := false
	for i := 0; i+len(k) <= len(s); i++ {
		if s[i] == '\'' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && strings.EqualFold(s[i:i+len(k)], k) {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(k):])
		}
	}
	return s, ""
}

// hasPrefixFold reports whether s starts with the ASCII keyword kw, ignoring
// case. The match is measured in bytes of s, so s[len(kw):] is the remainder.
func hasPrefixFold(s, kw string) bool {
	return len(s) >= len(kw) && strings.EqualFold(s[:len(kw)], kw)
}

// splitComma splits a comma-separated list, ignoring commas inside quotes and
// parentheses.
func splitComma(s string) []string {
	parts := []string{}
	cur := strings.Builder{}
	inQuote := false
	depth := 0
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, cur.String())
	}
	return parts
}

// splitStatements cuts src after every ';' outside quotes. Text after the last
// ';' is returned as its own piece so Parse can reject it.
func splitStatements(src string) []string {
	var out []string
	start := 0
	inQuote := false
	for i, r := range src {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			out = append(out, src[start:i+1])
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(src[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
