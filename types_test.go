package mosaicdb

import "testing"

func TestDimensionIsValid(t *testing.T) {
	tests := []struct {
		name     string
		dim      Dimension
		expected bool
	}{
		{"uppercase letter", 'C', true},
		{"uppercase Z is a coordinate dimension", 'Z', true},
		{"lowercase letter", 'q', true},
		{"lowercase x reserved", 'x', false},
		{"lowercase y reserved", 'y', false},
		{"lowercase z reserved", 'z', false},
		{"digit", '1', false},
		{"punctuation", '/', false},
		{"space", ' ', false},
		{"non-printable", 0x07, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dim.IsValid(); got != tt.expected {
				t.Errorf("Dimension(%q).IsValid() = %v, expected %v", byte(tt.dim), got, tt.expected)
			}
		})
	}
}

func TestIntervalValidity(t *testing.T) {
	if InvalidInt32Interval().IsValid() {
		t.Error("the canonical invalid int32 interval must not be valid")
	}
	if InvalidDoubleInterval().IsValid() {
		t.Error("the canonical invalid double interval must not be valid")
	}
	if !(Int32Interval{Minimum: 1, Maximum: 1}).IsValid() {
		t.Error("a single-value interval is valid")
	}
	if (Int32Interval{Minimum: 2, Maximum: 1}).IsValid() {
		t.Error("min > max must be invalid")
	}
	if !(DoubleInterval{Minimum: -1.5, Maximum: 2.5}).IsValid() {
		t.Error("a proper double interval is valid")
	}
}

func TestLogicalPositionEqual(t *testing.T) {
	base := LogicalPosition{PosX: 1, PosY: 2, Width: 3, Height: 4, PyramidLevel: 1}

	same := base
	same.PosX += 1e-10
	if !base.Equal(same) {
		t.Error("positions differing within epsilon must compare equal")
	}

	other := base
	other.PyramidLevel = 2
	if base.Equal(other) {
		t.Error("positions with different pyramid levels must differ")
	}

	shifted := base
	shifted.PosX += 0.5
	if base.Equal(shifted) {
		t.Error("clearly shifted positions must differ")
	}
}

func TestCoordinateClauseEnumeration(t *testing.T) {
	clause := &CoordinateQueryClause{}
	clause.AddRange('T', RangeClause{Start: 1, End: 2})
	clause.AddRange('C', RangeClause{Start: 3, End: 4})
	clause.AddRange('C', RangeClause{Start: 5, End: 6})

	dims := clause.Dimensions()
	if len(dims) != 2 || dims[0] != 'C' || dims[1] != 'T' {
		t.Errorf("Dimensions() = %v, expected sorted [C T]", dims)
	}

	ranges := clause.Ranges('C')
	if len(ranges) != 2 || ranges[0].Start != 3 || ranges[1].Start != 5 {
		t.Errorf("Ranges('C') = %v, expected insertion order", ranges)
	}

	if clause.Ranges('Q') != nil {
		t.Error("Ranges for a dimension without clauses must be nil")
	}

	var nilClause *CoordinateQueryClause
	if !nilClause.IsEmpty() {
		t.Error("a nil clause is empty")
	}
	if nilClause.Dimensions() != nil || nilClause.Ranges('C') != nil {
		t.Error("a nil clause enumerates nothing")
	}
}

func TestTileInfoClauseEnumeration(t *testing.T) {
	clause := &TileInfoQueryClause{}
	clause.AddPyramidLevelCondition(LogicalOperatorInvalid, ComparisonEqual, 0)
	clause.AddPyramidLevelCondition(LogicalOperatorOr, ComparisonGreaterThan, 5)

	conditions := clause.Conditions()
	if len(conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(conditions))
	}
	if conditions[0].Comparison != ComparisonEqual || conditions[1].Value != 5 {
		t.Errorf("conditions = %v", conditions)
	}

	var nilClause *TileInfoQueryClause
	if !nilClause.IsEmpty() || nilClause.Conditions() != nil {
		t.Error("a nil clause is empty")
	}
}
