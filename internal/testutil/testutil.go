// Package testutil provides builders for thread fixtures used in tests.
package testutil

import (
	"testing"
	"time"

	"github.com/panbanda/edslo/pkg/models"
)

// At parses an RFC 3339 timestamp and fails the test on error.
func At(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error: %v", s, err)
	}
	return ts
}

// Thread builds a question thread in category with the given answers.
func Thread(id int, created time.Time, category string, answers ...models.Answer) models.Thread {
	return models.Thread{
		ID:        id,
		CreatedAt: created,
		Category:  category,
		Answers:   answers,
	}
}

// Staff builds a staff answer posted at ts.
func Staff(id int, ts time.Time) models.Answer {
	return models.Answer{ID: id, CreatedAt: ts, Role: models.RoleStaff}
}

// Student builds a student answer posted at ts.
func Student(id int, ts time.Time, endorsed bool) models.Answer {
	return models.Answer{ID: id, CreatedAt: ts, Role: models.RoleStudent, Endorsed: endorsed}
}

// Hours returns ts shifted by h hours.
func Hours(ts time.Time, h float64) time.Time {
	return ts.Add(time.Duration(h * float64(time.Hour)))
}
