package dummydb

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
)

// DB is an in-memory database, for tests.
// A single lock guards all tables so that deleting a student and their fees is atomic.
type DB struct {
	sync.RWMutex
	students  map[int]*student.Student
	fees      map[int]*fee.Fee
	inquiries map[int]*inquiry.Inquiry
	pkCount   map[string]int
}

func Open() (*DB, error) {
	db := &DB{
		students:  make(map[int]*student.Student),
		fees:      make(map[int]*fee.Fee),
		inquiries: make(map[int]*inquiry.Inquiry),
		pkCount:   make(map[string]int),
	}
	return db, nil
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.pkCount[table]++
	return db.pkCount[table]
}

// containsFold reports whether `substr` is within `s`, ignoring case.
func containsFold(s, substr string) bool {
	folder := cases.Fold() // a Caser must not be shared between goroutines
	return strings.Contains(folder.String(s), folder.String(substr))
}
