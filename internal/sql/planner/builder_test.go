package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/sortkey"
	"github.com/tuannm99/novarow/internal/sql/parser"
)

var users = record.MustSchema(
	record.Column{Name: "id", Affinity: cell.Int},
	record.Column{Name: "name", Affinity: cell.String},
	record.Column{Name: "joined", Affinity: cell.Date},
)

type fakeResolver struct{}

func (fakeResolver) TableSchema(database, table string) (*record.Schema, error) {
	if database == "main" && table == "users" {
		return users, nil
	}
	return nil, errors.New("no such table")
}

func (fakeResolver) ResultSchema(name string) (*record.Schema, error) {
	if name == "recent" {
		return users, nil
	}
	return nil, errors.New("no such result")
}

func build(t *testing.T, sql string) (Plan, error) {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	return BuildPlan(stmt, fakeResolver{}, sortkey.Default)
}

func TestBuildPlan_CreateTable(t *testing.T) {
	p, err := build(t, "CREATE TABLE main.users (id INTEGER, name TEXT(16), paid money, ok bool);")
	require.NoError(t, err)

	plan, ok := p.(*CreateTablePlan)
	require.True(t, ok)
	require.Equal(t, "main", plan.Database)
	require.Equal(t, "users", plan.TableName)
	require.Equal(t, "id:int,name:string:16,paid:money,ok:bool", plan.Schema.String())

	_, err = build(t, "CREATE TABLE main.users (id WHATEVER);")
	require.True(t, errkind.ScriptCompile.Is(err))

	_, err = build(t, "CREATE TABLE main.users (id INT, ID INT);")
	require.True(t, errkind.ScriptCompile.Is(err))
}

func TestBuildPlan_Insert(t *testing.T) {
	p, err := build(t, "INSERT INTO main.users VALUES (1, 'ann', '2024-01-02T00:00:00Z'), (2, NULL, NULL);")
	require.NoError(t, err)

	plan := p.(*InsertPlan)
	require.Len(t, plan.Rows, 2)
	require.Equal(t, int64(1), plan.Rows[0].At(0).Int())
	require.Equal(t, 2024, plan.Rows[0].At(2).Time().Year())
	require.True(t, plan.Rows[1].At(1).IsNull())
	require.Equal(t, cell.String, plan.Rows[1].At(1).Affinity())

	t.Run("errors", func(t *testing.T) {
		for _, sql := range []string{
			"INSERT INTO main.users VALUES (1, 'ann');",
			"INSERT INTO main.users VALUES ('x', 'ann', NULL);",
			"INSERT INTO main.users VALUES (1, 'ann', 'yesterday');",
			"INSERT INTO main.ghost VALUES (1);",
		} {
			_, err := build(t, sql)
			require.True(t, errkind.ScriptCompile.Is(err), sql)
		}
	})
}

func TestBuildPlan_Scan(t *testing.T) {
	p, err := build(t, "SELECT * FROM main.users WHERE NAME = 'ann' ORDER BY 2 desc, id INTO x;")
	require.NoError(t, err)

	plan := p.(*ScanPlan)
	require.True(t, plan.FromTable)
	require.Equal(t, "x", plan.Into)
	require.Equal(t, 1, plan.Filter.Column)
	require.True(t, plan.Filter.Value.Equal(cell.NewString("ann")))
	require.True(t, plan.Key.Equal(sortkey.NewKey(
		sortkey.Part{Column: 2, Direction: sortkey.Descending},
		sortkey.Part{Column: 0, Direction: sortkey.Ascending},
	)))

	p, err = build(t, "SELECT * FROM recent;")
	require.NoError(t, err)
	plan = p.(*ScanPlan)
	require.False(t, plan.FromTable)
	require.Equal(t, "recent", plan.Into)
	require.Nil(t, plan.Filter)
	require.Zero(t, plan.Key.Len())

	_, err = build(t, "SELECT * FROM main.users WHERE nope = 1;")
	require.True(t, errkind.ScriptCompile.Is(err))

	_, err = build(t, "SELECT * FROM nothing;")
	require.True(t, errkind.ScriptCompile.Is(err))

	_, err = build(t, "SELECT * FROM main.users ORDER BY zzz;")
	require.True(t, errkind.Unresolved.Is(err))

	_, err = build(t, "SELECT * FROM main.users ORDER BY 7;")
	require.True(t, errkind.DataFormat.Is(err))
}

func TestBuildPlan_DropResult(t *testing.T) {
	p, err := build(t, "DROP RESULT recent;")
	require.NoError(t, err)
	require.Equal(t, &DropResultPlan{Name: "recent"}, p)
}
