package postgres

import (
	"database/sql/driver"
	"testing"
)

func TestTextArray_NilEncodesEmptyArray(t *testing.T) {
	v, err := textArray(nil).(driver.Valuer).Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	// A nil slice must encode as an empty array literal, never as SQL
	// NULL: class_sessions.present and the other array columns are
	// NOT NULL, so a freshly opened session with nobody marked present
	// would otherwise fail to insert.
	if v != "{}" {
		t.Errorf("expected {} for nil slice, got %v", v)
	}
}

func TestTextArray_EncodesElements(t *testing.T) {
	v, err := textArray([]string{"S1", "S2"}).(driver.Valuer).Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != `{"S1","S2"}` {
		t.Errorf("unexpected encoding %v", v)
	}
}
