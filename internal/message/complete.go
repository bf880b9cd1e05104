package message

import (
	"time"

	"caredays/internal/applicant"
)

// CompletedRedistribution replaces the custody agreement URL list with the
// attachment ids retained in the remote store.
type CompletedRedistribution struct {
	Recipient           Recipient `json:"mottakerType"`
	CustodyAgreementIDs []string  `json:"samværsavtaleVedleggId"`
}

// CompletedRecord is the immutable, fully-resolved record serialized onto the
// durable log. It is composed exactly once per accepted submission.
type CompletedRecord struct {
	ReceivedAt                time.Time           `json:"mottatt"`
	Applicant                 applicant.Applicant `json:"søker"`
	SubmissionID              string              `json:"søknadId"`
	Language                  string              `json:"språk"`
	UnderstoodRightsAndDuties bool                `json:"harForståttRettigheterOgPlikter"`
	ConfirmedInformation      bool                `json:"harBekreftetOpplysninger"`
	RecipientNationalID       string              `json:"mottakerFnr"`
	RecipientName             string              `json:"mottakerNavn"`
	SoleCustody               bool                `json:"harAleneomsorg"`
	ExtendedRight             bool                `json:"harUtvidetRett"`
	WorkingActively           bool                `json:"erYrkesaktiv"`
	WorksInNorway             bool                `json:"arbeiderINorge"`
	WorkSituation             []WorkSituation     `json:"arbeidssituasjon"`
	DaysUsedThisYear          *int                `json:"antallDagerBruktIÅr,omitempty"`
	Children                  []Child             `json:"barn"`

	Type           Type                     `json:"type"`
	Corona         *CoronaTransfer          `json:"korona,omitempty"`
	SpouseTransfer *SpouseTransfer          `json:"overføring,omitempty"`
	Redistribution *CompletedRedistribution `json:"fordeling,omitempty"`
}

// Complete consumes a validated message and composes the completed record.
// The nullable booleans are dereferenced here; Validate has already rejected
// any message where they are absent. For redistributions the attachment ids
// replace the URL references.
func (m Message) Complete(resolved applicant.Applicant, receivedAt time.Time, custodyAgreementIDs []string) CompletedRecord {
	record := CompletedRecord{
		ReceivedAt:                receivedAt.UTC(),
		Applicant:                 resolved,
		SubmissionID:              m.SubmissionID,
		Language:                  m.Language,
		UnderstoodRightsAndDuties: m.UnderstoodRightsAndDuties,
		ConfirmedInformation:      m.ConfirmedInformation,
		RecipientNationalID:       m.RecipientNationalID,
		RecipientName:             m.RecipientName,
		SoleCustody:               *m.SoleCustody,
		ExtendedRight:             *m.ExtendedRight,
		WorkingActively:           *m.WorkingActively,
		WorksInNorway:             *m.WorksInNorway,
		WorkSituation:             m.WorkSituation,
		DaysUsedThisYear:          m.DaysUsedThisYear,
		Children:                  m.Children,
		Type:                      m.Type,
		Corona:                    m.Corona,
		SpouseTransfer:            m.SpouseTransfer,
	}
	if m.Redistribution != nil {
		if custodyAgreementIDs == nil {
			custodyAgreementIDs = []string{}
		}
		record.Redistribution = &CompletedRedistribution{
			Recipient:           m.Redistribution.Recipient,
			CustodyAgreementIDs: custodyAgreementIDs,
		}
	}
	return record
}
