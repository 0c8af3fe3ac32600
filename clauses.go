package mosaicdb

import (
	"sort"

	"github.com/samber/lo"
)

// RangeClause is an inclusive range of coordinate values. Use
// math.MinInt32 for Start (or math.MaxInt32 for End) to leave the
// respective side open.
type RangeClause struct {
	Start int32
	End   int32
}

// CoordinateQueryClause is a per-dimension predicate set over the
// coordinate columns. Multiple ranges for the same dimension are combined
// with OR; different dimensions are combined with AND. An empty clause
// matches everything.
//
// Enumeration is idempotent: Dimensions returns the dimensions in sorted
// order and Ranges preserves insertion order, so repeated compilation of
// the same clause yields identical statements.
type CoordinateQueryClause struct {
	ranges map[Dimension][]RangeClause
}

// AddRange adds an inclusive [start, end] range for the dimension.
func (c *CoordinateQueryClause) AddRange(dim Dimension, clause RangeClause) {
	if c.ranges == nil {
		c.ranges = make(map[Dimension][]RangeClause)
	}
	c.ranges[dim] = append(c.ranges[dim], clause)
}

// Dimensions returns the dimensions for which ranges are present, in
// ascending order.
func (c *CoordinateQueryClause) Dimensions() []Dimension {
	if c == nil || len(c.ranges) == 0 {
		return nil
	}
	dims := lo.Keys(c.ranges)
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

// Ranges returns the range clauses for the dimension in the order they
// were added, or nil if there are none.
func (c *CoordinateQueryClause) Ranges(dim Dimension) []RangeClause {
	if c == nil {
		return nil
	}
	return c.ranges[dim]
}

// IsEmpty reports whether the clause carries no conditions at all.
func (c *CoordinateQueryClause) IsEmpty() bool {
	return c == nil || len(c.ranges) == 0
}

// LogicalOperator combines a scalar condition with its predecessor.
type LogicalOperator uint8

const (
	// LogicalOperatorInvalid is only legal on the first condition, where
	// the operator is unused.
	LogicalOperatorInvalid LogicalOperator = iota
	// LogicalOperatorAnd combines with AND.
	LogicalOperatorAnd
	// LogicalOperatorOr combines with OR.
	LogicalOperatorOr
)

// ComparisonOperation is the comparison applied by a scalar condition.
type ComparisonOperation uint8

const (
	// ComparisonInvalid is the zero value.
	ComparisonInvalid ComparisonOperation = iota
	// ComparisonEqual is "=".
	ComparisonEqual
	// ComparisonNotEqual is "<>".
	ComparisonNotEqual
	// ComparisonLessThan is "<".
	ComparisonLessThan
	// ComparisonLessThanOrEqual is "<=".
	ComparisonLessThanOrEqual
	// ComparisonGreaterThan is ">".
	ComparisonGreaterThan
	// ComparisonGreaterThanOrEqual is ">=".
	ComparisonGreaterThanOrEqual
)

// PyramidLevelCondition is one scalar condition on the pyramid-level
// column. The logical operator of the first condition in a clause is
// unused.
type PyramidLevelCondition struct {
	Logical    LogicalOperator
	Comparison ComparisonOperation
	Value      int32
}

// TileInfoQueryClause is an ordered list of scalar conditions on the
// pyramid-level column. Conditions are evaluated strictly left-to-right
// with no operator precedence: ((((c1) op2 c2) op3 c3) ...).
type TileInfoQueryClause struct {
	conditions []PyramidLevelCondition
}

// AddPyramidLevelCondition appends a condition to the clause.
func (c *TileInfoQueryClause) AddPyramidLevelCondition(logical LogicalOperator, comparison ComparisonOperation, value int32) {
	c.conditions = append(c.conditions, PyramidLevelCondition{Logical: logical, Comparison: comparison, Value: value})
}

// Conditions returns the conditions in the order they were added.
func (c *TileInfoQueryClause) Conditions() []PyramidLevelCondition {
	if c == nil {
		return nil
	}
	return c.conditions
}

// IsEmpty reports whether the clause carries no conditions.
func (c *TileInfoQueryClause) IsEmpty() bool {
	return c == nil || len(c.conditions) == 0
}
