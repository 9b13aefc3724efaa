package codec_test

import (
	"testing"

	"github.com/AndrewDonelson/savestate/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type item struct {
	ID    int      `json:"id" msgpack:"id"`
	Name  string   `json:"name" msgpack:"name"`
	Tags  []string `json:"tags" msgpack:"tags"`
	Score float64  `json:"score" msgpack:"score"`
}

func TestJSONCodec(t *testing.T) {
	c := codec.JSON{}
	orig := item{ID: 1, Name: "test", Tags: []string{"a"}, Score: 1.5}
	b, err := c.Marshal(orig)
	require.NoError(t, err)

	var got item
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, orig, got)
	assert.Equal(t, "json", c.Name())
	assert.Equal(t, ".json", c.Extension())
	assert.False(t, c.Binary())
}

func TestMsgPackCodec(t *testing.T) {
	c := codec.MsgPack{}
	orig := item{ID: 42, Name: "pack", Tags: []string{"x", "y"}}
	b, err := c.Marshal(orig)
	require.NoError(t, err)

	var got item
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, orig, got)
	assert.Equal(t, "msgpack", c.Name())
	assert.Equal(t, ".sav", c.Extension())
}

func TestGobCodec(t *testing.T) {
	c := codec.Gob{}
	orig := item{ID: 7, Name: "gob", Tags: []string{"z"}, Score: 2.25}
	b, err := c.Marshal(orig)
	require.NoError(t, err)

	var got item
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, orig, got)
	assert.Equal(t, "binary", c.Name())
	assert.True(t, c.Binary())
}

func TestProtobufCodec(t *testing.T) {
	c := codec.Protobuf{}
	orig, err := structpb.NewStruct(map[string]any{"level": 3.0, "hero": "ayla"})
	require.NoError(t, err)

	b, err := c.Marshal(orig)
	require.NoError(t, err)

	got := &structpb.Struct{}
	require.NoError(t, c.Unmarshal(b, got))
	assert.True(t, proto.Equal(orig, got))
}

func TestProtobufCodec_RejectsPlainStruct(t *testing.T) {
	_, err := codec.Protobuf{}.Marshal(item{ID: 1})
	assert.ErrorIs(t, err, codec.ErrNotProtoMessage)

	var got item
	err = codec.Protobuf{}.Unmarshal([]byte{}, &got)
	assert.ErrorIs(t, err, codec.ErrNotProtoMessage)
}

func TestEncodeDecodeString_AllCodecs(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.MsgPack{}, codec.Gob{}} {
		t.Run(c.Name(), func(t *testing.T) {
			orig := item{ID: 9, Name: "round", Tags: []string{"t"}}
			s, err := codec.EncodeString(c, &orig)
			require.NoError(t, err)
			assert.NotEmpty(t, s)

			var got item
			require.NoError(t, codec.DecodeString(c, s, &got))
			assert.Equal(t, orig, got)
		})
	}
}

func TestEncodeString_RejectsPrimitive(t *testing.T) {
	_, err := codec.EncodeString(codec.JSON{}, 42)
	assert.ErrorIs(t, err, codec.ErrNotComposite)

	var p *item
	_, err = codec.EncodeString(codec.JSON{}, p)
	assert.ErrorIs(t, err, codec.ErrNotComposite)
}

func TestDecodeString_Corrupt(t *testing.T) {
	var got item
	assert.Error(t, codec.DecodeString(codec.JSON{}, "{not json", &got))
	assert.Error(t, codec.DecodeString(codec.MsgPack{}, "!!!not-base64", &got))
	assert.Error(t, codec.DecodeString(codec.JSON{}, "{}", got))
}

func TestCheckComposite(t *testing.T) {
	assert.NoError(t, codec.CheckComposite(map[string]int{}))
	assert.NoError(t, codec.CheckComposite([]int{1}))
	assert.NoError(t, codec.CheckComposite(&item{}))
	assert.ErrorIs(t, codec.CheckComposite("str"), codec.ErrNotComposite)
	assert.ErrorIs(t, codec.CheckComposite(nil), codec.ErrNotComposite)
}
