package assistant

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/danschewy/lexiform/model"
)

// Snapshot is one labelled piece of entity state appended to the outbound
// message list, so the model sees machine-readable current values and not
// just the chat transcript.
type Snapshot struct {
	Label string
	Value any
}

// Compose builds the message list for one model call: the system prompt,
// the conversation history in order, and a single trailing system message
// embedding the JSON-encoded snapshots.
func Compose(system string, history []model.Message, snapshots ...Snapshot) ([]model.Message, error) {
	msgs := make([]model.Message, 0, len(history)+2)
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: system})
	msgs = append(msgs, history...)

	if len(snapshots) == 0 {
		return msgs, nil
	}

	var state strings.Builder
	for i, s := range snapshots {
		encoded, err := json.Marshal(s.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", s.Label)
		}
		if i > 0 {
			state.WriteByte('\n')
		}
		state.WriteString(s.Label)
		state.WriteString(": ")
		state.Write(encoded)
	}
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: state.String()})

	return msgs, nil
}
