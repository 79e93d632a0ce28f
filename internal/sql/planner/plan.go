package planner

import (
	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/sortkey"
)

// Plan is the interface for executable plans.
type Plan interface {
	planNode()
}

// ----- Plan nodes -----

type CreateTablePlan struct {
	Database  string
	TableName string
	Schema    *record.Schema
}

func (*CreateTablePlan) planNode() {}

// InsertPlan carries rows already coerced to the table schema.
type InsertPlan struct {
	Database  string
	TableName string
	Rows      []record.Record
}

func (*InsertPlan) planNode() {}

// Filter keeps records whose Column equals Value.
type Filter struct {
	Column int
	Value  cell.Cell
}

// ScanPlan reads a table or heap result, filters, sorts and stores the outcome
// in the heap as Into.
type ScanPlan struct {
	Source    string
	FromTable bool
	Schema    *record.Schema
	Filter    *Filter
	Key       sortkey.Key
	Into      string
}

func (*ScanPlan) planNode() {}

type DropResultPlan struct {
	Name string
}

func (*DropResultPlan) planNode() {}
