// Package applicant resolves the authenticated caller against the external
// identity lookup service and carries the resolved identity onto the
// published record.
package applicant

import (
	"time"

	"caredays/pkg/domain"
)

const legalAge = 18

// Applicant is the resolved identity of the caller. JSON field names follow
// the wire format of the published record.
type Applicant struct {
	ActorID    string      `json:"aktørId"`
	NationalID string      `json:"fødselsnummer"`
	BirthDate  domain.Date `json:"fødselsdato"`
	FirstName  string      `json:"fornavn"`
	MiddleName *string     `json:"mellomnavn,omitempty"`
	LastName   string      `json:"etternavn"`
}

// IsOfLegalAge reports whether the applicant is at least 18 years old at now.
func (a Applicant) IsOfLegalAge(now time.Time) bool {
	return a.BirthDate.YearsSince(now) >= legalAge
}
