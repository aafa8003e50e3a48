package dynamostore

import "encoding/json"

func marshalState(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalState(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
