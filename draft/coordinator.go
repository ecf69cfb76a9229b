// Package draft carries an author through editing, previewing and
// committing an article. A Coordinator owns the uncommitted edit state of
// one session; nothing outside its transition methods mutates it.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"editorial-cms/document"
	"editorial-cms/models"

	"github.com/rs/zerolog"
)

type State int

const (
	StateEditing State = iota
	StatePreviewing
	StateSubmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StatePreviewing:
		return "previewing"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText lets State appear by name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{StateEditing, StatePreviewing, StateSubmitting, StateDone} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown draft state %q", text)
}

// Action is the author's commit choice.
type Action string

const (
	ActionSaveDraft Action = "draft"
	ActionPublish   Action = "publish"
)

func (a Action) status() (models.ArticleStatus, bool) {
	switch a {
	case ActionSaveDraft:
		return models.StatusDraft, true
	case ActionPublish:
		return models.StatusPublished, true
	}
	return "", false
}

// Destination tells the caller where the author goes after a commit.
type Destination string

const (
	// DestinationNewEditor is a fresh editor; used after creating an article.
	DestinationNewEditor Destination = "new_editor"
	// DestinationArticle is the read view of the updated article.
	DestinationArticle Destination = "article"
)

var (
	ErrInvalidTransition  = errors.New("draft: transition not allowed in current state")
	ErrSubmissionInFlight = errors.New("draft: a submission is already in flight")
	ErrUnknownAction      = errors.New("draft: unknown submit action")
	ErrArticleNotFound    = errors.New("draft: article not found")
)

// SubmitError wraps a store failure that did not come from validation.
// The snapshot is untouched, so the submission can be retried as is.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "draft: submission failed: " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Retryable is always true; kept as a method so callers can ask.
func (e *SubmitError) Retryable() bool {
	return true
}

// Fields is the author-editable part of a Snapshot. Status is absent on
// purpose: it only changes on submit.
type Fields struct {
	Title      string
	Body       string
	Thumbnail  string
	CategoryID *uint
	Tags       []string
}

// Outcome describes a successful commit.
type Outcome struct {
	ArticleID   uint                 `json:"article_id"`
	Status      models.ArticleStatus `json:"status"`
	Destination Destination          `json:"destination"`
}

// PreviewView is what the preview surface displays, derived from the
// captured snapshot only.
type PreviewView struct {
	Title      string               `json:"title"`
	Summary    string               `json:"summary"`
	HTML       string               `json:"html"`
	Thumbnail  string               `json:"thumbnail"`
	CategoryID *uint                `json:"category_id"`
	Tags       []string             `json:"tags"`
	Status     models.ArticleStatus `json:"status"`
	Fallback   bool                 `json:"fallback"`
	Errors     map[string][]string  `json:"errors,omitempty"`
}

// Project renders a snapshot for display.
func Project(s Snapshot) PreviewView {
	parsed := document.Parse(s.Body)
	c := s.Clone()
	return PreviewView{
		Title:      c.Title,
		Summary:    document.ExtractPreview(parsed.Document),
		HTML:       document.Render(parsed.Document),
		Thumbnail:  c.Thumbnail,
		CategoryID: c.CategoryID,
		Tags:       c.Tags,
		Status:     c.Status,
		Fallback:   parsed.Fallback,
	}
}

type Coordinator struct {
	mu        sync.Mutex
	store     ContentStore
	log       zerolog.Logger
	state     State
	articleID uint
	authorID  uint
	snapshot  Snapshot
	errors    map[string][]string
}

// New starts editing a new article for authorID.
func New(store ContentStore, authorID uint, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		log:      log.With().Str("component", "draft").Uint("author_id", authorID).Logger(),
		state:    StateEditing,
		authorID: authorID,
		snapshot: blankSnapshot(),
	}
}

// Load starts editing an existing article. An unknown id returns
// ErrArticleNotFound; the session cannot start.
func Load(ctx context.Context, store ContentStore, articleID uint, log zerolog.Logger) (*Coordinator, error) {
	article, err := store.Fetch(ctx, articleID)
	if err != nil {
		var notFound *models.ErrorNotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %d", ErrArticleNotFound, articleID)
		}
		return nil, fmt.Errorf("fetch article %d: %w", articleID, err)
	}

	c := &Coordinator{
		store:     store,
		state:     StateEditing,
		articleID: article.ID,
		authorID:  article.AuthorID,
		snapshot:  snapshotFromArticle(article),
	}
	c.log = log.With().
		Str("component", "draft").
		Uint("author_id", article.AuthorID).
		Uint("article_id", article.ID).
		Logger()
	return c, nil
}

func blankSnapshot() Snapshot {
	return Snapshot{Body: document.EmptySerialized, Status: models.StatusDraft}
}

func snapshotFromArticle(a *models.Article) Snapshot {
	s := Snapshot{Title: a.Title, Status: models.StatusDraft, Body: document.EmptySerialized}
	if v := a.LatestVersion; v != nil {
		s.Title = v.Title
		s.Body = v.Content
		s.Thumbnail = v.Thumbnail
		s.Tags = v.TagNames()
		s.Status = v.Status
		if v.CategoryID != nil {
			id := *v.CategoryID
			s.CategoryID = &id
		}
	}
	if s.Status != models.StatusPublished {
		s.Status = models.StatusDraft
	}
	return s
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ArticleID is zero until a new article has been created.
func (c *Coordinator) ArticleID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.articleID
}

func (c *Coordinator) AuthorID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorID
}

// Snapshot returns a copy of the held field set.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

// Edit replaces the editable fields. Only legal while Editing.
func (c *Coordinator) Edit(f Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return fmt.Errorf("%w: edit while %s", ErrInvalidTransition, c.state)
	}

	c.snapshot.Title = f.Title
	c.snapshot.Body = f.Body
	c.snapshot.Thumbnail = f.Thumbnail
	c.snapshot.CategoryID = nil
	if f.CategoryID != nil {
		id := *f.CategoryID
		c.snapshot.CategoryID = &id
	}
	c.snapshot.Tags = models.NormalizeTags(f.Tags)
	return nil
}

// Preview freezes the current fields and moves to Previewing. The token
// is the navigation parameter for the preview surface.
func (c *Coordinator) Preview() (string, PreviewView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return "", PreviewView{}, fmt.Errorf("%w: preview while %s", ErrInvalidTransition, c.state)
	}

	captured := c.snapshot.Clone()
	token, err := EncodeSnapshot(captured)
	if err != nil {
		return "", PreviewView{}, err
	}
	c.snapshot = captured
	c.errors = nil
	c.state = StatePreviewing
	c.log.Debug().Str("state", c.state.String()).Msg("Preview requested")
	return token, Project(captured), nil
}

// View re-projects the captured snapshot while Previewing, together with
// any validation errors from the last submit.
func (c *Coordinator) View() (PreviewView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePreviewing && c.state != StateSubmitting {
		return PreviewView{}, fmt.Errorf("%w: view while %s", ErrInvalidTransition, c.state)
	}
	view := Project(c.snapshot)
	view.Errors = copyErrors(c.errors)
	return view, nil
}

// Back returns to Editing with the fields carried by token. A token that
// cannot be decoded falls back to the snapshot held since Preview.
func (c *Coordinator) Back(token string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePreviewing {
		return Snapshot{}, fmt.Errorf("%w: back while %s", ErrInvalidTransition, c.state)
	}

	if token != "" {
		decoded, err := DecodeSnapshot(token)
		if err != nil {
			c.log.Warn().Err(err).Msg("Discarding navigation token, using held snapshot")
		} else {
			// Status is not editable; keep the held one.
			decoded.Status = c.snapshot.Status
			decoded.Tags = models.NormalizeTags(decoded.Tags)
			c.snapshot = decoded
		}
	}
	c.errors = nil
	c.state = StateEditing
	return c.snapshot.Clone(), nil
}

// Submit commits the captured snapshot with the status chosen by action.
// It issues exactly one Create or Update; a call made while another is in
// flight returns ErrSubmissionInFlight and does nothing.
func (c *Coordinator) Submit(ctx context.Context, action Action) (Outcome, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	case StatePreviewing:
	default:
		state := c.state
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, state)
	}
	status, ok := action.status()
	if !ok {
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	submitted := c.snapshot.Clone()
	submitted.Status = status
	articleID, authorID := c.articleID, c.authorID
	c.state = StateSubmitting
	c.mu.Unlock()

	var err error
	id := articleID
	if articleID == 0 {
		id, err = c.store.Create(ctx, authorID, submitted)
	} else {
		err = c.store.Update(ctx, articleID, submitted)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = StatePreviewing
		var invalid *models.ErrorValidation
		if errors.As(err, &invalid) {
			c.errors = copyErrors(invalid.Fields)
			c.log.Info().Interface("fields", invalid.Fields).Msg("Submission rejected")
			return Outcome{}, err
		}
		c.log.Error().Err(err).Msg("Submission failed")
		return Outcome{}, &SubmitError{Err: err}
	}

	c.snapshot = submitted
	c.articleID = id
	c.errors = nil
	c.state = StateDone

	dest := DestinationArticle
	if articleID == 0 {
		dest = DestinationNewEditor
	}
	c.log.Info().Uint("article_id", id).Str("status", string(status)).Msg("Article submitted")
	return Outcome{ArticleID: id, Status: status, Destination: dest}, nil
}

// Restart opens a fresh editor for a new article after a commit.
func (c *Coordinator) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDone {
		return fmt.Errorf("%w: restart while %s", ErrInvalidTransition, c.state)
	}
	c.articleID = 0
	c.snapshot = blankSnapshot()
	c.errors = nil
	c.state = StateEditing
	return nil
}

func copyErrors(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
