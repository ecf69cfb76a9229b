package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"editorial-cms/draft"
	"editorial-cms/models"
)

// DraftSession is the client-facing state of an editing session.
type DraftSession struct {
	ID        string         `json:"id"`
	State     draft.State    `json:"state"`
	ArticleID uint           `json:"article_id"`
	Snapshot  draft.Snapshot `json:"snapshot"`
}

type PreviewResult struct {
	Session *DraftSession     `json:"session"`
	Token   string            `json:"token"`
	View    draft.PreviewView `json:"view"`
}

// SubmitResult reports a commit. Session is nil when the session ended,
// which happens after updating an existing article.
type SubmitResult struct {
	Outcome draft.Outcome `json:"outcome"`
	Session *DraftSession `json:"session"`
}

// DraftSessionService keeps one draft.Coordinator per editing session.
type DraftSessionService interface {
	Start(ctx context.Context, actor models.Actor, articleID *uint) (*DraftSession, error)
	Get(id string, actor models.Actor) (*DraftSession, error)
	Edit(id string, actor models.Actor, req models.EditDraftRequest) (*DraftSession, error)
	Preview(id string, actor models.Actor) (*PreviewResult, error)
	View(id string, actor models.Actor) (*draft.PreviewView, error)
	Back(id string, actor models.Actor, token string) (*DraftSession, error)
	Submit(ctx context.Context, id string, actor models.Actor, action draft.Action) (*SubmitResult, error)
	Discard(id string, actor models.Actor) error
}

type session struct {
	owner uint
	coord *draft.Coordinator
}

type draftSessionService struct {
	store    draft.ContentStore
	sessions *gocache.Cache
	log      zerolog.Logger
}

// NewDraftSessionService keeps sessions for idleTTL after their last use.
func NewDraftSessionService(store draft.ContentStore, idleTTL, cleanupInterval time.Duration, log zerolog.Logger) DraftSessionService {
	return &draftSessionService{
		store:    store,
		sessions: gocache.New(idleTTL, cleanupInterval),
		log:      log.With().Str("component", "draft_sessions").Logger(),
	}
}

func (s *draftSessionService) Start(ctx context.Context, actor models.Actor, articleID *uint) (*DraftSession, error) {
	var coord *draft.Coordinator
	if articleID == nil {
		coord = draft.New(s.store, actor.UserID, s.log)
	} else {
		var err error
		coord, err = draft.Load(ctx, s.store, *articleID, s.log)
		if err != nil {
			return nil, err
		}
		if !actor.CanManage(coord.AuthorID()) {
			return nil, &models.ErrorForbidden{Message: "not allowed to edit this article"}
		}
	}

	id := uuid.NewString()
	s.sessions.SetDefault(id, &session{owner: actor.UserID, coord: coord})
	s.log.Info().
		Str("session_id", id).
		Uint("user_id", actor.UserID).
		Uint("article_id", coord.ArticleID()).
		Msg("Draft session started")

	return describe(id, coord), nil
}

// lookup returns the session and refreshes its idle timer. Sessions owned
// by someone else are reported as missing.
func (s *draftSessionService) lookup(id string, actor models.Actor) (*session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, &models.ErrorNotFound{Resource: "draft session"}
	}
	sess := v.(*session)
	if sess.owner != actor.UserID {
		return nil, &models.ErrorNotFound{Resource: "draft session"}
	}
	s.sessions.SetDefault(id, sess)
	return sess, nil
}

func (s *draftSessionService) Get(id string, actor models.Actor) (*DraftSession, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	return describe(id, sess.coord), nil
}

func (s *draftSessionService) Edit(id string, actor models.Actor, req models.EditDraftRequest) (*DraftSession, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	err = sess.coord.Edit(draft.Fields{
		Title:      req.Title,
		Body:       req.Body,
		Thumbnail:  req.Thumbnail,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	})
	if err != nil {
		return nil, err
	}
	return describe(id, sess.coord), nil
}

func (s *draftSessionService) Preview(id string, actor models.Actor) (*PreviewResult, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	token, view, err := sess.coord.Preview()
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Session: describe(id, sess.coord), Token: token, View: view}, nil
}

func (s *draftSessionService) View(id string, actor models.Actor) (*draft.PreviewView, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	view, err := sess.coord.View()
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *draftSessionService) Back(id string, actor models.Actor, token string) (*DraftSession, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	if _, err := sess.coord.Back(token); err != nil {
		return nil, err
	}
	return describe(id, sess.coord), nil
}

func (s *draftSessionService) Submit(ctx context.Context, id string, actor models.Actor, action draft.Action) (*SubmitResult, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.coord.Submit(ctx, action)
	if err != nil {
		if !errors.Is(err, draft.ErrSubmissionInFlight) {
			s.log.Debug().Err(err).Str("session_id", id).Msg("Submit did not complete")
		}
		return nil, err
	}

	result := &SubmitResult{Outcome: outcome}
	switch outcome.Destination {
	case draft.DestinationNewEditor:
		if err := sess.coord.Restart(); err != nil {
			return nil, err
		}
		result.Session = describe(id, sess.coord)
	default:
		s.sessions.Delete(id)
	}

	s.log.Info().
		Str("session_id", id).
		Uint("article_id", outcome.ArticleID).
		Str("destination", string(outcome.Destination)).
		Msg("Draft session submitted")
	return result, nil
}

func (s *draftSessionService) Discard(id string, actor models.Actor) error {
	if _, err := s.lookup(id, actor); err != nil {
		return err
	}
	s.sessions.Delete(id)
	return nil
}

func describe(id string, c *draft.Coordinator) *DraftSession {
	return &DraftSession{
		ID:        id,
		State:     c.State(),
		ArticleID: c.ArticleID(),
		Snapshot:  c.Snapshot(),
	}
}
