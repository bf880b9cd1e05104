package message

import (
	"fmt"
	"strings"

	"caredays/internal/nationalid"
	"caredays/pkg/domain"
)

// Transfer bounds and the aggregate attachment size cap are policy constants.
const (
	MinTransferDays       = 1
	MaxTransferDays       = 10
	MaxCoronaTransferDays = 999

	// MaxAttachmentTotalSize caps the combined size of all custody agreement
	// attachments on one redistribution message.
	MaxAttachmentTotalSize = 24 * 1024 * 1024
)

// knownClosurePeriods is the allow-list of officially recognized pandemic
// closure periods. Input periods must match one entry exactly.
var knownClosurePeriods = []ClosurePeriod{
	{From: domain.MustDate("2021-01-01"), To: domain.MustDate("2021-12-31")},
}

// Violation describes one rule the message broke. The set of violations for
// one message is reported together, never one at a time.
type Violation struct {
	ParameterName string `json:"name"`
	ParameterType string `json:"type"`
	Reason        string `json:"reason"`
	InvalidValue  any    `json:"invalid_value,omitempty"`
}

func entityViolation(name, reason string, value any) Violation {
	return Violation{ParameterName: name, ParameterType: "entity", Reason: reason, InvalidValue: value}
}

// ValidationError aggregates every violation found in one pass; it is the
// single error value validation produces.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		names[i] = v.ParameterName
	}
	return fmt.Sprintf("message validation failed: %s", strings.Join(names, ", "))
}

// AttachmentIncompleteError rejects a redistribution whose referenced custody
// agreements could not all be retrieved, or whose combined size exceeds the
// cap. Kept distinct from field-level validation failures.
type AttachmentIncompleteError struct {
	Referenced int
	Retrieved  int
	TotalSize  int
	TooLarge   bool
}

func (e *AttachmentIncompleteError) Error() string {
	if e.TooLarge {
		return fmt.Sprintf("combined attachment size %d exceeds the cap of %d bytes", e.TotalSize, MaxAttachmentTotalSize)
	}
	return fmt.Sprintf("referenced %d attachments, but only %d could be retrieved", e.Referenced, e.Retrieved)
}

// Validate runs every structural and business rule check over the message
// without short-circuiting, and returns nil or one *ValidationError carrying
// the full violation set. Attachment completeness is checked separately by
// ValidateCustodyAgreements since it requires remote state.
func Validate(m Message) error {
	var violations []Violation

	if !m.ConfirmedInformation {
		violations = append(violations, entityViolation(
			"harBekreftetOpplysninger",
			"Opplysningene må bekreftes for å sende inn melding.",
			m.ConfirmedInformation,
		))
	}
	if !m.UnderstoodRightsAndDuties {
		violations = append(violations, entityViolation(
			"harForståttRettigheterOgPlikter",
			"Må ha forstått rettigheter og plikter for å sende inn melding.",
			m.UnderstoodRightsAndDuties,
		))
	}
	if strings.TrimSpace(m.RecipientName) == "" {
		violations = append(violations, entityViolation(
			"mottakerNavn",
			"mottakerNavn kan ikke være null, tom eller bare mellomrom",
			m.RecipientName,
		))
	}
	if !nationalid.Valid(m.RecipientNationalID) {
		violations = append(violations, entityViolation(
			"mottakerFnr",
			"mottakerFnr må være gyldig norsk identifikator",
			m.RecipientNationalID,
		))
	}
	if len(m.WorkSituation) == 0 {
		violations = append(violations, entityViolation(
			"arbeidssituasjon",
			"arbeidssituasjon kan ikke være en tom liste",
			m.WorkSituation,
		))
	}
	if len(m.Children) == 0 {
		violations = append(violations, entityViolation(
			"barn",
			"barn kan ikke være en tom liste",
			m.Children,
		))
	}
	for i, child := range m.Children {
		violations = append(violations, validateChild(child, i)...)
	}

	switch m.Type {
	case TypeCoronaTransfer:
		violations = append(violations, validateCoronaTransfer(m)...)
	case TypeSpouseTransfer:
		violations = append(violations, validateSpouseTransfer(m)...)
	case TypeRedistribution:
		violations = append(violations, validateRedistribution(m)...)
	default:
		violations = append(violations, entityViolation(
			"type",
			"type må være koronaoverføring, overføring eller fordeling",
			m.Type,
		))
	}

	violations = append(violations, requireBool(m.SoleCustody, "harAleneomsorg")...)
	violations = append(violations, requireBool(m.ExtendedRight, "harUtvidetRett")...)
	violations = append(violations, requireBool(m.WorkingActively, "erYrkesaktiv")...)
	violations = append(violations, requireBool(m.WorksInNorway, "arbeiderINorge")...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func validateChild(c Child, index int) []Violation {
	var violations []Violation

	if c.NationalID == "" {
		violations = append(violations, entityViolation(
			fmt.Sprintf("barn[%d].identitetsnummer", index),
			"Barn sitt identitetsnummer kan ikke være null",
			nil,
		))
	} else if !nationalid.Valid(c.NationalID) {
		violations = append(violations, entityViolation(
			fmt.Sprintf("barn[%d].identitetsnummer", index),
			"Barn sitt identitetsnummer må være gyldig norsk identifikator",
			c.NationalID,
		))
	}

	if strings.TrimSpace(c.Name) == "" {
		violations = append(violations, entityViolation(
			fmt.Sprintf("barn[%d].navn", index),
			"Barn sitt navn kan ikke være null, tom eller bare mellomrom",
			c.Name,
		))
	}

	violations = append(violations, requireBool(c.SoleCustody, fmt.Sprintf("barn[%d].aleneOmOmsorgen", index))...)
	violations = append(violations, requireBool(c.ExtendedRight, fmt.Sprintf("barn[%d].utvidetRett", index))...)
	return violations
}

func validateCoronaTransfer(m Message) []Violation {
	if m.Corona == nil {
		return []Violation{entityViolation(
			"korona",
			"korona kan ikke være null når type melding er koronaoverføring",
			nil,
		)}
	}

	var violations []Violation
	if m.Corona.DaysToTransfer < MinTransferDays || m.Corona.DaysToTransfer > MaxCoronaTransferDays {
		violations = append(violations, entityViolation(
			"korona.antallDagerSomSkalOverføres",
			fmt.Sprintf("antallDagerSomSkalOverføres må være mellom %d og %d", MinTransferDays, MaxCoronaTransferDays),
			m.Corona.DaysToTransfer,
		))
	}
	if !knownClosurePeriod(m.Corona.ClosurePeriod) {
		violations = append(violations, entityViolation(
			"korona.stengingsperiode",
			"stengingsperiode må være en kjent stengingsperiode",
			fmt.Sprintf("%s - %s", m.Corona.ClosurePeriod.From, m.Corona.ClosurePeriod.To),
		))
	}
	return violations
}

func knownClosurePeriod(p ClosurePeriod) bool {
	for _, known := range knownClosurePeriods {
		if known.Equal(p) {
			return true
		}
	}
	return false
}

func validateSpouseTransfer(m Message) []Violation {
	if m.SpouseTransfer == nil {
		return []Violation{entityViolation(
			"overføring",
			"overføring kan ikke være null når type melding er overføring",
			nil,
		)}
	}

	var violations []Violation
	if m.SpouseTransfer.DaysToTransfer < MinTransferDays || m.SpouseTransfer.DaysToTransfer > MaxTransferDays {
		violations = append(violations, entityViolation(
			"overføring.antallDagerSomSkalOverføres",
			fmt.Sprintf("antallDagerSomSkalOverføres må være mellom %d og %d", MinTransferDays, MaxTransferDays),
			m.SpouseTransfer.DaysToTransfer,
		))
	}
	if m.SpouseTransfer.Recipient != RecipientSpouse && m.SpouseTransfer.Recipient != RecipientCohabitant {
		violations = append(violations, entityViolation(
			"overføring.mottakerType",
			"overføring.mottakerType må enten være ektefelle eller samboer",
			m.SpouseTransfer.Recipient,
		))
	}
	return violations
}

func validateRedistribution(m Message) []Violation {
	if m.Redistribution == nil {
		return []Violation{entityViolation(
			"fordeling",
			"fordeling kan ikke være null når type melding er fordeling",
			nil,
		)}
	}

	var violations []Violation
	if m.Redistribution.Recipient != RecipientCoParent {
		violations = append(violations, entityViolation(
			"fordeling.mottakerType",
			"mottakerType må være samværsforelder",
			m.Redistribution.Recipient,
		))
	}
	return violations
}

// ValidateCustodyAgreements enforces the completeness invariant for a
// redistribution's attachments: every reference must have been retrievable,
// and the combined size must stay under the cap.
func ValidateCustodyAgreements(referenced, retrieved, totalSize int) error {
	if retrieved != referenced {
		return &AttachmentIncompleteError{Referenced: referenced, Retrieved: retrieved, TotalSize: totalSize}
	}
	if totalSize > MaxAttachmentTotalSize {
		return &AttachmentIncompleteError{Referenced: referenced, Retrieved: retrieved, TotalSize: totalSize, TooLarge: true}
	}
	return nil
}

func requireBool(value *bool, name string) []Violation {
	if value != nil {
		return nil
	}
	return []Violation{entityViolation(name, name+" kan ikke være null", nil)}
}
