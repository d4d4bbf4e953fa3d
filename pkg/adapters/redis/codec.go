package redis

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes interactions for storage.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// MsgPackCodec stores values as MessagePack. It is the default: interactions
// are written on every choice and msgpack is both smaller and faster than JSON.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (MsgPackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (MsgPackCodec) Name() string                    { return "msgpack" }

// JSONCodec stores values as JSON, which keeps keys readable with redis-cli.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                    { return "json" }
