package storefrontv1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// JSONCodecName — имя кодека для grpc.CallContentSubtype.
const JSONCodecName = "json"

// jsonCodec сериализует сообщения API в JSON поверх gRPC-фреймов.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return JSONCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
