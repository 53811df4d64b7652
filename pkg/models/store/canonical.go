package store

import (
	"database/sql"
	"time"
)

// CanonicalValue is one cell of a canonical table in long format.
type CanonicalValue struct {
	Source   string
	Period   time.Time
	Position int
	Label    string
	Value    sql.NullFloat64
}

// SnapshotValue is one cell of a consolidated snapshot in long format.
type SnapshotValue struct {
	Period   time.Time
	Source   string
	Position int
	Label    string
	Value    sql.NullFloat64
}
