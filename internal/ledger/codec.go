package ledger

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// frame carries already-serialized protobuf bytes through gRPC.
type frame struct {
	b []byte
}

// rawCodec hands frames to the transport unchanged, so a client-signed
// transaction reaches the ledger byte for byte.
type rawCodec struct{}

var _ encoding.Codec = rawCodec{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	f, ok := v.(*frame)
	if !ok {
		return nil, fmt.Errorf("raw codec: unexpected message type %T", v)
	}
	return f.b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*frame)
	if !ok {
		return fmt.Errorf("raw codec: unexpected message type %T", v)
	}
	f.b = append(f.b[:0], data...)
	return nil
}

// Name keeps the standard content-subtype so the ledger decodes requests
// with its protobuf codec.
func (rawCodec) Name() string {
	return "proto"
}
