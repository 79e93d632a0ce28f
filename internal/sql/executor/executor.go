// Package executor runs scripts against a workspace environment: it parses, plans
// and executes each statement in order, stopping at the first failure.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuannm99/novarow/internal/catalog"
	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/sortkey"
	"github.com/tuannm99/novarow/internal/sql/parser"
	"github.com/tuannm99/novarow/internal/sql/planner"
	"github.com/tuannm99/novarow/internal/workspace"
)

// Executor is a workspace.Executor for the statement language in package parser.
type Executor struct{}

var _ workspace.Executor = Executor{}

func New() Executor { return Executor{} }

// Execute parses the whole script before running anything, so a parse error
// leaves the environment untouched. Plans are built per statement, letting later
// statements see tables created by earlier ones.
func (e Executor) Execute(ctx context.Context, env workspace.Env, script string) error {
	stmts, err := parser.ParseScript(script)
	if err != nil {
		return err
	}

	res := resolver{env: env}
	for i, st := range stmts {
		if err := ctx.Err(); err != nil {
			return err
		}
		plan, err := planner.BuildPlan(st, res, env.Keys)
		if err != nil {
			return err
		}
		if err := e.execPlan(env, plan); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

func (e Executor) execPlan(env workspace.Env, p planner.Plan) error {
	switch plan := p.(type) {
	case *planner.CreateTablePlan:
		_, err := env.Catalog.Create(plan.Database, plan.TableName, plan.Schema)
		return err
	case *planner.InsertPlan:
		return e.execInsert(env, plan)
	case *planner.ScanPlan:
		return e.execScan(env, plan)
	case *planner.DropResultPlan:
		_, err := env.Heap.Take(plan.Name)
		return err
	default:
		return fmt.Errorf("executor: unsupported plan type %T", p)
	}
}

func (e Executor) execInsert(env workspace.Env, p *planner.InsertPlan) error {
	tbl, err := env.Catalog.Lookup(p.Database, p.TableName)
	if err != nil {
		return err
	}
	if err := tbl.Append(p.Rows...); err != nil {
		return err
	}
	slog.Debug("executor: insert", "table", p.Database+"."+p.TableName, "rows", len(p.Rows))
	return nil
}

func (e Executor) execScan(env workspace.Env, p *planner.ScanPlan) error {
	var src []record.Record
	if p.FromTable {
		db, table, err := catalog.ParseQualified(p.Source)
		if err != nil {
			return err
		}
		tbl, err := env.Catalog.Lookup(db, table)
		if err != nil {
			return err
		}
		if src, err = tbl.Records(); err != nil {
			return err
		}
	} else {
		r, ok := env.Heap.Get(p.Source)
		if !ok {
			return fmt.Errorf("%w: %q", heap.ErrNotFound, p.Source)
		}
		src = r.Records
	}

	// copy so sorting never reorders the source result
	out := make([]record.Record, 0, len(src))
	for _, r := range src {
		if p.Filter != nil && !r.At(p.Filter.Column).Equal(p.Filter.Value) {
			continue
		}
		out = append(out, r)
	}
	if p.Key.Len() > 0 {
		if err := sortkey.Sort(out, p.Key); err != nil {
			return err
		}
	}

	_, err := env.Heap.Put(&heap.Result{Name: p.Into, Schema: p.Schema, Records: out})
	return err
}
