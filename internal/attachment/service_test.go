package attachment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type fakeStore struct {
	mu          sync.Mutex
	attachments map[ID]Attachment
	retainErrs  map[ID]error
	deleteErrs  map[ID]error
	retained    []ID
	deleted     []ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attachments: map[ID]Attachment{},
		retainErrs:  map[ID]error{},
		deleteErrs:  map[ID]error{},
	}
}

func (f *fakeStore) Store(_ context.Context, att Attachment, _, _ string) (ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ID("stored")
	f.attachments[id] = att
	return id, nil
}

func (f *fakeStore) Fetch(_ context.Context, id ID, _, _ string, _ Owner) (*Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	att, ok := f.attachments[id]
	if !ok {
		return nil, ErrNotRetrievable
	}
	return &att, nil
}

func (f *fakeStore) Retain(_ context.Context, id ID, _, _ string, _ Owner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.retainErrs[id]; err != nil {
		return err
	}
	f.retained = append(f.retained, id)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id ID, _, _ string, _ Owner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErrs[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type FanOutSuite struct {
	suite.Suite
	store   *fakeStore
	service *Service
	owner   Owner
	ctx     context.Context
}

func TestFanOutSuite(t *testing.T) {
	suite.Run(t, new(FanOutSuite))
}

func (s *FanOutSuite) SetupTest() {
	s.store = newFakeStore()
	s.service = NewService(s.store, slog.New(slog.DiscardHandler))
	s.owner = Owner{NationalID: "02119970078"}
	s.ctx = context.Background()
}

func (s *FanOutSuite) TestIDFromRef() {
	s.Equal(ID("abc123"), IDFromRef("http://store/v1/dokument/abc123"))
	s.Equal(ID("abc123"), IDFromRef("http://store/v1/dokument/abc123/"))
	s.Equal(ID("abc123"), IDFromRef("abc123"))
}

func (s *FanOutSuite) TestFetchAll() {
	s.Run("returns every retrievable attachment", func() {
		s.SetupTest()
		s.store.attachments["1"] = Attachment{Content: []byte("a")}
		s.store.attachments["2"] = Attachment{Content: []byte("b")}

		fetched := s.service.FetchAll(s.ctx, []string{"http://store/1", "http://store/2"}, "token", "corr", s.owner)
		s.Len(fetched, 2)
	})

	s.Run("drops attachments the store cannot return", func() {
		s.SetupTest()
		s.store.attachments["1"] = Attachment{Content: []byte("a")}

		fetched := s.service.FetchAll(s.ctx, []string{"http://store/1", "http://store/2"}, "token", "corr", s.owner)
		s.Require().Len(fetched, 1)
		s.Equal([]byte("a"), fetched[0].Content)
	})

	s.Run("returns empty result for no references", func() {
		s.SetupTest()
		s.Empty(s.service.FetchAll(s.ctx, nil, "token", "corr", s.owner))
	})
}

func (s *FanOutSuite) TestRetainAll() {
	s.Run("retains every reference and returns the ids", func() {
		s.SetupTest()
		ids, err := s.service.RetainAll(s.ctx, []string{"http://store/1", "http://store/2"}, "token", "corr", s.owner)
		s.Require().NoError(err)
		s.Equal([]ID{"1", "2"}, ids)
		s.ElementsMatch([]ID{"1", "2"}, s.store.retained)
	})

	s.Run("runs every unit to completion before reporting a failure", func() {
		s.SetupTest()
		s.store.retainErrs["1"] = errors.New("store unavailable")

		_, err := s.service.RetainAll(s.ctx, []string{"http://store/1", "http://store/2", "http://store/3"}, "token", "corr", s.owner)
		s.Require().Error(err)
		s.ElementsMatch([]ID{"2", "3"}, s.store.retained)
	})
}

func (s *FanOutSuite) TestDeleteAll() {
	s.Run("deletes every id", func() {
		s.SetupTest()
		err := s.service.DeleteAll(s.ctx, []ID{"1", "2"}, "token", "corr", s.owner)
		s.Require().NoError(err)
		s.ElementsMatch([]ID{"1", "2"}, s.store.deleted)
	})

	s.Run("runs every unit to completion before reporting a failure", func() {
		s.SetupTest()
		s.store.deleteErrs["2"] = errors.New("store unavailable")

		err := s.service.DeleteAll(s.ctx, []ID{"1", "2", "3"}, "token", "corr", s.owner)
		s.Require().Error(err)
		s.ElementsMatch([]ID{"1", "3"}, s.store.deleted)
	})
}
