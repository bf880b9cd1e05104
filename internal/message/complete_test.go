package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"caredays/internal/applicant"
	"caredays/pkg/domain"
)

type CompleteSuite struct {
	suite.Suite
	resolved   applicant.Applicant
	receivedAt time.Time
}

func TestCompleteSuite(t *testing.T) {
	suite.Run(t, new(CompleteSuite))
}

func (s *CompleteSuite) SetupTest() {
	s.resolved = applicant.Applicant{
		ActorID:    "1000000000099",
		NationalID: validNationalID,
		BirthDate:  domain.MustDate("1985-06-15"),
		FirstName:  "Kari",
		LastName:   "Nordmann",
	}
	s.receivedAt = time.Date(2021, 5, 3, 11, 45, 0, 0, time.UTC)
}

func (s *CompleteSuite) TestComplete() {
	s.Run("carries the resolved applicant and receipt time", func() {
		record := validMessage(TypeSpouseTransfer).Complete(s.resolved, s.receivedAt, nil)
		s.Equal(s.resolved, record.Applicant)
		s.Equal(s.receivedAt, record.ReceivedAt)
	})

	s.Run("normalizes the receipt time to UTC", func() {
		oslo := time.FixedZone("CEST", 2*60*60)
		record := validMessage(TypeSpouseTransfer).Complete(s.resolved, s.receivedAt.In(oslo), nil)
		s.Equal(time.UTC, record.ReceivedAt.Location())
		s.True(record.ReceivedAt.Equal(s.receivedAt))
	})

	s.Run("dereferences the nullable booleans", func() {
		m := validMessage(TypeSpouseTransfer)
		record := m.Complete(s.resolved, s.receivedAt, nil)
		s.True(record.SoleCustody)
		s.False(record.ExtendedRight)
		s.True(record.WorkingActively)
		s.True(record.WorksInNorway)
	})

	s.Run("keeps the variant payload for transfers", func() {
		record := validMessage(TypeCoronaTransfer).Complete(s.resolved, s.receivedAt, nil)
		s.Require().NotNil(record.Corona)
		s.Equal(5, record.Corona.DaysToTransfer)
		s.Nil(record.Redistribution)
	})

	s.Run("replaces custody agreement urls with retained ids", func() {
		record := validMessage(TypeRedistribution).Complete(s.resolved, s.receivedAt, []string{"abc", "def"})
		s.Require().NotNil(record.Redistribution)
		s.Equal([]string{"abc", "def"}, record.Redistribution.CustodyAgreementIDs)
		s.Equal(RecipientCoParent, record.Redistribution.Recipient)
	})

	s.Run("serializes an empty id list, never null", func() {
		record := validMessage(TypeRedistribution).Complete(s.resolved, s.receivedAt, nil)
		raw, err := json.Marshal(record.Redistribution)
		s.Require().NoError(err)
		s.Contains(string(raw), `"samværsavtaleVedleggId":[]`)
	})
}
