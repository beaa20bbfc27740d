package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Strob0t/TaskRelay/internal/domain/relay"
)

// ValidateOutcome checks that data is a relay outcome whose kind matches
// the last token of subject.
func ValidateOutcome(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	var o relay.Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	if o.ID == "" {
		return errors.New("outcome id is required")
	}
	if o.TaskID == "" {
		return errors.New("outcome task_id is required")
	}

	kind := subject
	if i := strings.LastIndexByte(subject, '.'); i >= 0 {
		kind = subject[i+1:]
	}
	if string(o.Kind) != kind {
		return fmt.Errorf("outcome kind %q does not match subject %s", o.Kind, subject)
	}
	return nil
}
