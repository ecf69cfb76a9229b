package draft

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"editorial-cms/models"

	"gopkg.in/go-playground/validator.v9"
)

// SnapshotVersion is written into every encoded snapshot. Tokens carrying
// another version are rejected.
const SnapshotVersion = 1

var (
	ErrSnapshotInvalid = errors.New("draft: invalid snapshot token")
	ErrSnapshotVersion = errors.New("draft: unsupported snapshot version")
)

var snapshotValidator = validator.New()

// Snapshot is the full uncommitted field set of an article being edited.
// Body is kept in serialized form so what the author typed is carried
// unchanged; projections parse it on demand.
type Snapshot struct {
	Title      string               `json:"title" validate:"max=255"`
	Body       string               `json:"body"`
	Thumbnail  string               `json:"thumbnail" validate:"max=2048"`
	CategoryID *uint                `json:"category_id"`
	Tags       []string             `json:"tags" validate:"dive,max=100"`
	Status     models.ArticleStatus `json:"status" validate:"oneof=draft published"`
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.CategoryID != nil {
		id := *s.CategoryID
		out.CategoryID = &id
	}
	if s.Tags != nil {
		out.Tags = append([]string(nil), s.Tags...)
		if len(out.Tags) == 0 {
			out.Tags = []string{}
		}
	}
	return out
}

type envelope struct {
	Version  int             `json:"v"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// EncodeSnapshot turns s into the opaque token passed between the editing
// and preview surfaces.
func EncodeSnapshot(s Snapshot) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	raw, err := json.Marshal(envelope{Version: SnapshotVersion, Snapshot: body})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeSnapshot reverses EncodeSnapshot. Unknown fields, a different
// version or values outside the schema are errors.
func DecodeSnapshot(token string) (Snapshot, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	var env envelope
	if err := strictUnmarshal(raw, &env); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if env.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrSnapshotVersion, env.Version)
	}
	if len(env.Snapshot) == 0 {
		return Snapshot{}, fmt.Errorf("%w: missing snapshot", ErrSnapshotInvalid)
	}

	var s Snapshot
	if err := strictUnmarshal(env.Snapshot, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := snapshotValidator.Struct(s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return s, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
