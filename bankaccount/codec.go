package bankaccount

import (
	"encoding/json"
	"fmt"
)

// envelopeTag is used only to read the leading "type" discriminator
// before decoding the rest of the event body into its concrete shape.
type envelopeTag struct {
	Type string `json:"type"`
}

// EncodeEvent renders an event to the canonical JSON event_body shape:
// a "type" discriminator plus the variant's own fields.
func EncodeEvent(e Event) ([]byte, error) {
	switch v := e.(type) {
	case Opened:
		return json.Marshal(struct {
			Type string `json:"type"`
			Opened
		}{EventTypeOpened, v})
	case Updated:
		return json.Marshal(struct {
			Type string `json:"type"`
			Updated
		}{EventTypeUpdated, v})
	case Deposited:
		return json.Marshal(struct {
			Type string `json:"type"`
			Deposited
		}{EventTypeDeposited, v})
	case Withdrawn:
		return json.Marshal(struct {
			Type string `json:"type"`
			Withdrawn
		}{EventTypeWithdrawn, v})
	case Closed:
		return json.Marshal(struct {
			Type string `json:"type"`
			Closed
		}{EventTypeClosed, v})
	default:
		return nil, fmt.Errorf("bankaccount: unknown event type %T", e)
	}
}

// DecodeEvent parses a JSON event_body produced by EncodeEvent back into
// its concrete Event variant. It dispatches on the caller-supplied
// eventType (e.g. read out of a store column that already carries the
// type alongside the body) and reads the body's "type" tag only when
// eventType is empty.
func DecodeEvent(eventType string, body []byte) (Event, error) {
	if eventType == "" {
		var tag envelopeTag
		if err := json.Unmarshal(body, &tag); err != nil {
			return nil, fmt.Errorf("bankaccount: decode event tag: %w", err)
		}
		eventType = tag.Type
	}

	switch eventType {
	case EventTypeOpened:
		var v Opened
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("bankaccount: decode %s: %w", eventType, err)
		}
		return v, nil
	case EventTypeUpdated:
		var v Updated
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("bankaccount: decode %s: %w", eventType, err)
		}
		return v, nil
	case EventTypeDeposited:
		var v Deposited
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("bankaccount: decode %s: %w", eventType, err)
		}
		return v, nil
	case EventTypeWithdrawn:
		var v Withdrawn
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("bankaccount: decode %s: %w", eventType, err)
		}
		return v, nil
	case EventTypeClosed:
		var v Closed
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("bankaccount: decode %s: %w", eventType, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("bankaccount: unknown event type %q", eventType)
	}
}
