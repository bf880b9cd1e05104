// Package message defines the care-days message model, its validation rules,
// and the composition of the completed record that is published to the
// durable log.
//
// A message is discriminated by Type over three variants. Exactly one
// variant payload must be populated, matching the type; the validator
// enforces this. JSON field names follow the established wire format.
package message

import (
	"caredays/pkg/domain"
)

// Type discriminates the three message variants.
type Type string

const (
	// TypeCoronaTransfer transfers days due to pandemic closure periods.
	TypeCoronaTransfer Type = "koronaoverføring"
	// TypeSpouseTransfer transfers days to a spouse or cohabitant.
	TypeSpouseTransfer Type = "overføring"
	// TypeRedistribution redistributes days to a co-parent.
	TypeRedistribution Type = "fordeling"
)

// Recipient classifies the relation of the person receiving days.
type Recipient string

const (
	RecipientSpouse     Recipient = "ektefelle"
	RecipientCohabitant Recipient = "samboer"
	RecipientCoParent   Recipient = "samværsforelder"
)

// WorkSituation describes one of the caller's employment situations.
type WorkSituation string

const (
	WorkSelfEmployed WorkSituation = "selvstendigNæringsdrivende"
	WorkEmployee     WorkSituation = "arbeidstaker"
	WorkFreelancer   WorkSituation = "frilanser"
	WorkOther        WorkSituation = "annen"
)

// Child is a child claimed on the message. NationalID may be absent on
// receipt and filled by enrichment; validation requires it afterwards.
type Child struct {
	NationalID    string      `json:"identitetsnummer,omitempty"`
	ActorID       string      `json:"aktørId,omitempty"`
	BirthDate     domain.Date `json:"fødselsdato"`
	Name          string      `json:"navn"`
	SoleCustody   *bool       `json:"aleneOmOmsorgen"`
	ExtendedRight *bool       `json:"utvidetRett"`
}

// MissingNationalID reports whether enrichment still has work to do.
func (c Child) MissingNationalID() bool {
	return c.NationalID == ""
}

// ClosurePeriod is a date range of a pandemic closure.
type ClosurePeriod struct {
	From domain.Date `json:"fraOgMed"`
	To   domain.Date `json:"tilOgMed"`
}

// Equal compares both endpoints at day precision.
func (p ClosurePeriod) Equal(other ClosurePeriod) bool {
	return p.From.Equal(other.From) && p.To.Equal(other.To)
}

// CoronaTransfer is the payload for TypeCoronaTransfer.
type CoronaTransfer struct {
	DaysToTransfer int           `json:"antallDagerSomSkalOverføres"`
	ClosurePeriod  ClosurePeriod `json:"stengingsperiode"`
}

// SpouseTransfer is the payload for TypeSpouseTransfer.
type SpouseTransfer struct {
	Recipient      Recipient `json:"mottakerType"`
	DaysToTransfer int       `json:"antallDagerSomSkalOverføres"`
}

// Redistribution is the payload for TypeRedistribution. Custody agreement
// references point at attachments held in the remote attachment store.
type Redistribution struct {
	Recipient            Recipient `json:"mottakerType"`
	CustodyAgreementURLs []string  `json:"samværsavtale"`
}

// Message is the untrusted citizen-submitted input. All fields are treated
// as immutable after receipt; child national identifiers are backfilled by
// the Enrich transform, which returns a new value.
type Message struct {
	SubmissionID              string          `json:"søknadId"`
	Language                  string          `json:"språk"`
	UnderstoodRightsAndDuties bool            `json:"harForståttRettigheterOgPlikter"`
	ConfirmedInformation      bool            `json:"harBekreftetOpplysninger"`
	RecipientNationalID       string          `json:"mottakerFnr"`
	RecipientName             string          `json:"mottakerNavn"`
	SoleCustody               *bool           `json:"harAleneomsorg"`
	ExtendedRight             *bool           `json:"harUtvidetRett"`
	WorkingActively           *bool           `json:"erYrkesaktiv"`
	WorksInNorway             *bool           `json:"arbeiderINorge"`
	WorkSituation             []WorkSituation `json:"arbeidssituasjon"`
	DaysUsedThisYear          *int            `json:"antallDagerBruktIÅr,omitempty"`
	Children                  []Child         `json:"barn"`

	Type           Type            `json:"type"`
	Corona         *CoronaTransfer `json:"korona,omitempty"`
	SpouseTransfer *SpouseTransfer `json:"overføring,omitempty"`
	Redistribution *Redistribution `json:"fordeling,omitempty"`
}

// CustodyAgreementRefs returns the redistribution attachment references, or
// nil for other variants.
func (m Message) CustodyAgreementRefs() []string {
	if m.Redistribution == nil {
		return nil
	}
	return m.Redistribution.CustodyAgreementURLs
}
