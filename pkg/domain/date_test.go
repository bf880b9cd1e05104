package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DateSuite struct {
	suite.Suite
}

func TestDateSuite(t *testing.T) {
	suite.Run(t, new(DateSuite))
}

func (s *DateSuite) TestParsing() {
	s.Run("parses yyyy-MM-dd", func() {
		d, err := ParseDate("2021-01-01")
		s.Require().NoError(err)
		s.Equal("2021-01-01", d.String())
	})

	s.Run("rejects other layouts", func() {
		_, err := ParseDate("01.01.2021")
		s.Error(err)
	})
}

func (s *DateSuite) TestJSON() {
	s.Run("round-trips through json", func() {
		var d Date
		s.Require().NoError(json.Unmarshal([]byte(`"2021-12-31"`), &d))
		s.Equal("2021-12-31", d.String())

		raw, err := json.Marshal(d)
		s.Require().NoError(err)
		s.Equal(`"2021-12-31"`, string(raw))
	})

	s.Run("rejects non-string values", func() {
		var d Date
		s.Error(json.Unmarshal([]byte(`20211231`), &d))
	})
}

func (s *DateSuite) TestYearsSince() {
	now := time.Date(2021, 5, 3, 12, 0, 0, 0, time.UTC)

	s.Run("counts whole years only", func() {
		s.Equal(35, NewDate(1985, time.June, 15).YearsSince(now))
	})

	s.Run("the anniversary itself counts", func() {
		s.Equal(18, NewDate(2003, time.May, 3).YearsSince(now))
	})

	s.Run("the day before the anniversary does not", func() {
		s.Equal(17, NewDate(2003, time.May, 4).YearsSince(now))
	})
}
