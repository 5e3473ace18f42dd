// Package validate provides input validation for API body parameters.
package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// TitleMaxLen bounds titles and names stored in the database.
const TitleMaxLen = 200

// Unit codes are exam-board identifiers like WPH11 or 4MB1: uppercase
// alphanumeric, 2 to 16 chars.
var unitCodeRe = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)

// ID validates an entity identifier from a path or body: a UUID.
func ID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Link validates an external resource link: absolute https URL with a host.
func Link(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}

// Title validates a display title: non-blank, bounded length.
func Title(title string) bool {
	trimmed := strings.TrimSpace(title)
	return trimmed != "" && len(trimmed) <= TitleMaxLen
}

// UnitCode validates an exam unit code.
func UnitCode(code string) bool {
	return unitCodeRe.MatchString(code)
}
