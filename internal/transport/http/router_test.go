package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"caredays/internal/applicant"
	"caredays/internal/attachment"
	"caredays/internal/children"
	"caredays/internal/draft"
	"caredays/internal/message"
	"caredays/internal/platform/middleware"
	"caredays/internal/submission"
	"caredays/pkg/domain"
)

const (
	testSigningKey = "test-signing-key"
	testSubject    = "02119970078"
)

type fakeSubmitter struct {
	err      error
	messages []message.Message
	identity submission.Identity
}

func (f *fakeSubmitter) Handle(_ context.Context, msg message.Message, id submission.Identity) error {
	f.messages = append(f.messages, msg)
	f.identity = id
	return f.err
}

type fakeAttachmentStore struct {
	storeErr error
	stored   []attachment.Attachment
	retained []attachment.ID
	deleted  []attachment.ID
}

func (f *fakeAttachmentStore) Store(_ context.Context, att attachment.Attachment, _, _ string) (attachment.ID, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.stored = append(f.stored, att)
	return "abc123", nil
}

func (f *fakeAttachmentStore) Fetch(_ context.Context, _ attachment.ID, _, _ string, _ attachment.Owner) (*attachment.Attachment, error) {
	return nil, attachment.ErrNotRetrievable
}

func (f *fakeAttachmentStore) Retain(_ context.Context, id attachment.ID, _, _ string, _ attachment.Owner) error {
	f.retained = append(f.retained, id)
	return nil
}

func (f *fakeAttachmentStore) Delete(_ context.Context, id attachment.ID, _, _ string, _ attachment.Owner) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeLookup struct {
	resolved applicant.Applicant
	err      error
	children []children.Child
}

func (f *fakeLookup) Resolve(_ context.Context, _, _, _ string) (applicant.Applicant, error) {
	return f.resolved, f.err
}

func (f *fakeLookup) CurrentChildren(_ context.Context, _, _ string) []children.Child {
	return f.children
}

type RouterSuite struct {
	suite.Suite
	submitter *fakeSubmitter
	store     *fakeAttachmentStore
	lookup    *fakeLookup
	router    http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.submitter = &fakeSubmitter{}
	s.store = &fakeAttachmentStore{}
	s.lookup = &fakeLookup{resolved: applicant.Applicant{
		NationalID: testSubject,
		BirthDate:  domain.MustDate("1985-06-15"),
		FirstName:  "Kari",
		LastName:   "Nordmann",
	}}

	redisServer := miniredis.RunT(s.T())
	drafts := draft.NewService(redis.NewClient(&redis.Options{Addr: redisServer.Addr()}), time.Hour)

	s.router = NewRouter(Handlers{
		Message:    NewMessageHandler(s.submitter, logger),
		Attachment: NewAttachmentHandler(attachment.NewService(s.store, logger), logger),
		Draft:      NewDraftHandler(drafts, logger),
		Lookup:     NewLookupHandler(s.lookup, s.lookup, logger),
	}, middleware.HMACValidator{SigningKey: []byte(testSigningKey)}, logger)
}

func (s *RouterSuite) token() string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testSubject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSigningKey))
	s.Require().NoError(err)
	return signed
}

func (s *RouterSuite) request(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+s.token())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) problemOf(rec *httptest.ResponseRecorder) ProblemDetails {
	var p ProblemDetails
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func (s *RouterSuite) spouseTransferBody() []byte {
	raw, err := json.Marshal(map[string]any{
		"søknadId":  "a9b1fd04-78b9-4b79-9204-2b673a3bc5a5",
		"overføring": map[string]any{"mottakerType": "ektefelle", "antallDagerSomSkalOverføres": 5},
	})
	s.Require().NoError(err)
	return raw
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("rejects requests without a token", func() {
		s.SetupTest()
		req := httptest.NewRequest(http.MethodGet, "/soker", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("rejects tokens signed with another key", func() {
		s.SetupTest()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": testSubject})
		signed, err := token.SignedString([]byte("wrong-key"))
		s.Require().NoError(err)

		req := httptest.NewRequest(http.MethodGet, "/soker", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("health needs no token", func() {
		s.SetupTest()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *RouterSuite) TestSubmitEndpoints() {
	s.Run("accepted submission returns 202", func() {
		s.SetupTest()
		rec := s.request(http.MethodPost, "/melding/overforing", s.spouseTransferBody())
		s.Equal(http.StatusAccepted, rec.Code)

		s.Require().Len(s.submitter.messages, 1)
		s.Equal(message.TypeSpouseTransfer, s.submitter.messages[0].Type)
		s.Equal(testSubject, s.submitter.identity.Subject)
		s.NotEmpty(s.submitter.identity.CorrelationID)
	})

	s.Run("generates a submission id when the client sent none", func() {
		s.SetupTest()
		rec := s.request(http.MethodPost, "/melding/overforing",
			[]byte(`{"overføring":{"mottakerType":"ektefelle","antallDagerSomSkalOverføres":5}}`))
		s.Equal(http.StatusAccepted, rec.Code)
		s.Require().Len(s.submitter.messages, 1)
		s.NotEmpty(s.submitter.messages[0].SubmissionID)
	})

	s.Run("rejects a message on the wrong endpoint", func() {
		s.SetupTest()
		rec := s.request(http.MethodPost, "/melding/fordeling", s.spouseTransferBody())
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("feil-melding-på-endepunkt", s.problemOf(rec).Title)
		s.Empty(s.submitter.messages)
	})

	s.Run("rejects an unparseable body", func() {
		s.SetupTest()
		rec := s.request(http.MethodPost, "/melding/overforing", []byte(`{not json`))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("maps validation failures to 400 with the violation set", func() {
		s.SetupTest()
		s.submitter.err = &message.ValidationError{Violations: []message.Violation{
			{ParameterName: "mottakerNavn", ParameterType: "entity", Reason: "required"},
			{ParameterName: "arbeidssituasjon", ParameterType: "entity", Reason: "required"},
		}}

		rec := s.request(http.MethodPost, "/melding/overforing", s.spouseTransferBody())
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Len(s.problemOf(rec).InvalidParameters, 2)
	})

	s.Run("maps an underage applicant to 451", func() {
		s.SetupTest()
		s.submitter.err = submission.ErrApplicantUnderage
		rec := s.request(http.MethodPost, "/melding/overforing", s.spouseTransferBody())
		s.Equal(http.StatusUnavailableForLegalReasons, rec.Code)
	})

	s.Run("maps oversized attachments to 413", func() {
		s.SetupTest()
		s.submitter.err = &message.AttachmentIncompleteError{Referenced: 1, Retrieved: 1, TooLarge: true}
		rec := s.request(http.MethodPost, "/melding/fordeling",
			[]byte(`{"fordeling":{"mottakerType":"samværsforelder","samværsavtale":[]}}`))
		s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	})

	s.Run("maps a failed publish to 500", func() {
		s.SetupTest()
		s.submitter.err = &submission.SubmissionFailedError{SubmissionID: "x"}
		rec := s.request(http.MethodPost, "/melding/overforing", s.spouseTransferBody())
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}

func (s *RouterSuite) TestLookupEndpoints() {
	s.Run("returns the resolved applicant", func() {
		s.SetupTest()
		rec := s.request(http.MethodGet, "/soker", nil)
		s.Equal(http.StatusOK, rec.Code)

		var resolved applicant.Applicant
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resolved))
		s.Equal("Kari", resolved.FirstName)
	})

	s.Run("maps denied applicant lookup to 451", func() {
		s.SetupTest()
		s.lookup.err = applicant.ErrAccessDenied
		rec := s.request(http.MethodGet, "/soker", nil)
		s.Equal(http.StatusUnavailableForLegalReasons, rec.Code)
	})

	s.Run("returns an empty child list instead of null", func() {
		s.SetupTest()
		rec := s.request(http.MethodGet, "/barn", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"barn":[]}`, rec.Body.String())
	})
}

func (s *RouterSuite) TestDraftEndpoints() {
	s.Run("returns an empty object when no draft exists", func() {
		s.SetupTest()
		rec := s.request(http.MethodGet, "/mellomlagring", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{}`, rec.Body.String())
	})

	s.Run("round-trips a stored draft", func() {
		s.SetupTest()
		draft := `{"språk":"nb"}`
		rec := s.request(http.MethodPost, "/mellomlagring", []byte(draft))
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.request(http.MethodGet, "/mellomlagring", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(draft, rec.Body.String())
	})

	s.Run("delete returns 202 and clears the draft", func() {
		s.SetupTest()
		s.request(http.MethodPut, "/mellomlagring", []byte(`{"a":1}`))

		rec := s.request(http.MethodDelete, "/mellomlagring", nil)
		s.Equal(http.StatusAccepted, rec.Code)

		rec = s.request(http.MethodGet, "/mellomlagring", nil)
		s.JSONEq(`{}`, rec.Body.String())
	})
}

func (s *RouterSuite) multipartBody(fieldName, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())
	return &buf, writer.FormDataContentType()
}

func (s *RouterSuite) TestAttachmentEndpoints() {
	s.Run("uploads an attachment and returns its location", func() {
		s.SetupTest()
		body, contentType := s.multipartBody("vedlegg", "avtale.pdf", "application/pdf", []byte("pdf-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/vedlegg", body)
		req.Header.Set("Authorization", "Bearer "+s.token())
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal("/vedlegg/abc123", rec.Header().Get("Location"))
		s.Require().Len(s.store.stored, 1)
		s.Equal("avtale.pdf", s.store.stored[0].Title)
		s.Require().NotNil(s.store.stored[0].Owner)
		s.Equal(testSubject, s.store.stored[0].Owner.NationalID)
	})

	s.Run("rejects unsupported content types", func() {
		s.SetupTest()
		body, contentType := s.multipartBody("vedlegg", "avtale.svg", "image/svg+xml", []byte("<svg/>"))
		req := httptest.NewRequest(http.MethodPost, "/vedlegg", body)
		req.Header.Set("Authorization", "Bearer "+s.token())
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("attachment-content-type-not-supported", s.problemOf(rec).Title)
	})

	s.Run("rejects a request without a file part", func() {
		s.SetupTest()
		rec := s.request(http.MethodPost, "/vedlegg", []byte("{}"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("deletes an attachment by id", func() {
		s.SetupTest()
		rec := s.request(http.MethodDelete, "/vedlegg/abc123", nil)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal([]attachment.ID{"abc123"}, s.store.deleted)
	})

	s.Run("persists an attachment by id", func() {
		s.SetupTest()
		rec := s.request(http.MethodPut, "/vedlegg/abc123", nil)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal([]attachment.ID{"abc123"}, s.store.retained)
	})
}
