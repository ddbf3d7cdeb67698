package grpc

import (
	"encoding/json"
	"fmt"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// jsonCodecName is the content subtype of every SubjectivityService call.
const jsonCodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the plain Go message structs of messages.go as JSON.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s codec: marshal %T: %w", jsonCodecName, v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s codec: unmarshal %T: %w", jsonCodecName, v, err)
	}
	return nil
}

func (jsonCodec) Name() string { return jsonCodecName }

// JSONCallOption selects the JSON codec on a client call.
func JSONCallOption() grpclib.CallOption {
	return grpclib.CallContentSubtype(jsonCodecName)
}
