// Package feedback provides the domain model for user feedback on model
// responses, including the optional conversation snapshot attached to a
// record and the privacy boundary applied before a record leaves the system.
package feedback

// Rating outcomes. A record's rating is a signed integer: positive means the
// model won the comparison, negative means it lost, zero is a draw. A finer
// 0-10 sub-scale may ride along in Details.
const (
	RatingWon  = 1
	RatingDraw = 0
	RatingLost = -1
)

// FallbackTitle is displayed when a record has neither a snapshot title nor
// meta model information.
const FallbackTitle = "Untitled Chat"

// RatingDetails carries the optional finer-grained 0-10 rating.
type RatingDetails struct {
	Rating int `json:"rating"`
}

// Data holds the rating payload of a feedback record.
type Data struct {
	Rating        int            `json:"rating"`
	Details       *RatingDetails `json:"details,omitempty"`
	ModelID       string         `json:"model_id"`
	SiblingModels []string       `json:"sibling_models,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Comment       string         `json:"comment,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
}

// User identifies the submitter. The avatar URL references an external image
// resource and is not owned by this service.
type User struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Message is a single turn inside a conversation snapshot.
type Message struct {
	Role       string `json:"role"` // "user" or "assistant"
	Content    string `json:"content"`
	Error      string `json:"error,omitempty"`
	Annotation string `json:"annotation,omitempty"`
	FeedbackID string `json:"feedback_id,omitempty"`
}

// Flagged reports whether the message carries an annotation or is linked to a
// feedback record.
func (m Message) Flagged() bool {
	return m.Annotation != "" || m.FeedbackID != ""
}

// Snapshot is an embedded, point-in-time copy of a chat conversation.
type Snapshot struct {
	Title    string    `json:"title,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Meta is fallback identifying info used when no snapshot title exists.
type Meta struct {
	ModelID string   `json:"model_id,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Record is a single feedback event tied to a model response. Snapshot and
// Meta are independently optional; every read path must tolerate their
// absence. Timestamps are epoch seconds.
type Record struct {
	ID        string    `json:"id"`
	Data      Data      `json:"data"`
	User      *User     `json:"user,omitempty"`
	UpdatedAt int64     `json:"updated_at"`
	CreatedAt int64     `json:"created_at,omitempty"`
	BrowserID string    `json:"browser_id,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Meta      *Meta     `json:"meta,omitempty"`
}

// Positive reports whether the record counts as a win.
func (r Record) Positive() bool { return r.Data.Rating > 0 }

// Negative reports whether the record counts as a loss.
func (r Record) Negative() bool { return r.Data.Rating < 0 }

// Title resolves the display title: snapshot title, then meta model id, then
// FallbackTitle.
func (r Record) Title() string {
	if r.Snapshot != nil && r.Snapshot.Title != "" {
		return r.Snapshot.Title
	}
	if r.Meta != nil && r.Meta.ModelID != "" {
		return r.Meta.ModelID
	}
	return FallbackTitle
}

// Messages returns the snapshot messages, or nil when no snapshot exists.
func (r Record) Messages() []Message {
	if r.Snapshot == nil {
		return nil
	}
	return r.Snapshot.Messages
}

// Strip returns a copy of the record with the conversation snapshot and all
// user-identifying fields removed. Only ratings, model ids, tags and meta
// survive; this is the privacy boundary for payloads shared outside the
// system.
func (r Record) Strip() Record {
	out := Record{
		ID:        r.ID,
		UpdatedAt: r.UpdatedAt,
		CreatedAt: r.CreatedAt,
		Data: Data{
			Rating:        r.Data.Rating,
			ModelID:       r.Data.ModelID,
			SiblingModels: r.Data.SiblingModels,
			Tags:          r.Data.Tags,
		},
	}
	if r.Data.Details != nil {
		d := *r.Data.Details
		out.Data.Details = &d
	}
	if r.Meta != nil {
		m := *r.Meta
		out.Meta = &m
	}
	return out
}

// StripAll applies Strip to every record, preserving order.
func StripAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Strip()
	}
	return out
}
