package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Subject is an exam subject with its unit breakdown.
type Subject struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Code         string `json:"code" db:"code"`
	SyllabusType string `json:"syllabus_type" db:"syllabus_type"` // IAL | IGCSE
	Units        Units  `json:"units" db:"units"`
}

// Unit is one unit or chapter of a subject.
type Unit struct {
	Unit string `json:"unit"`
	Name string `json:"name"`
}

// Units is stored as a JSON column.
type Units []Unit

func (u Units) Value() (driver.Value, error) {
	if u == nil {
		return "[]", nil
	}
	b, err := json.Marshal(u)
	return string(b), err
}

func (u *Units) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*u = nil
		return nil
	case []byte:
		return json.Unmarshal(v, u)
	case string:
		return json.Unmarshal([]byte(v), u)
	default:
		return fmt.Errorf("cannot scan %T into Units", src)
	}
}

var unitNumberPattern = regexp.MustCompile(`(?i)Unit\s*(\d+)`)

// SortNumerically orders units by their "Unit N" number, name as tie-break.
// Units without a parseable number sort last.
func (u Units) SortNumerically() {
	num := func(s string) int {
		if m := unitNumberPattern.FindStringSubmatch(s); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n
			}
		}
		return int(^uint(0) >> 1)
	}
	sort.SliceStable(u, func(i, j int) bool {
		ni, nj := num(u[i].Unit), num(u[j].Unit)
		if ni != nj {
			return ni < nj
		}
		return u[i].Name < u[j].Name
	})
}
