package feedback

// Turn is the renderable form of a single snapshot message. It is a
// structured intermediate representation: any rendering layer can consume it
// without re-deriving role classification or flag logic.
type Turn struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Flagged   bool   `json:"flagged"`
	ErrorText string `json:"error_text,omitempty"`
	Note      string `json:"note,omitempty"`
	Missing   bool   `json:"missing,omitempty"`
}

// FeedbackNote marks turns that received feedback.
const FeedbackNote = "[received feedback]"

// noDataText is the placeholder shown when a record has no usable snapshot.
const noDataText = "no conversation data available"

// FormatTranscript maps snapshot messages to renderable turns, one per
// message and in input order. Roles other than "user" are classified as
// assistant turns. A nil or empty message list yields a single placeholder
// turn with Missing set.
func FormatTranscript(messages []Message) []Turn {
	if len(messages) == 0 {
		return []Turn{{Role: "assistant", Text: noDataText, Missing: true}}
	}

	turns := make([]Turn, len(messages))
	for i, m := range messages {
		role := "assistant"
		if m.Role == "user" {
			role = "user"
		}
		t := Turn{
			Role:      role,
			Text:      m.Content,
			ErrorText: m.Error,
		}
		if m.Flagged() {
			t.Flagged = true
			t.Note = FeedbackNote
		}
		turns[i] = t
	}
	return turns
}
