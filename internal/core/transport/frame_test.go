package transport

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_EmptyFrameKept(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, WriteMessage(w, [][]byte{[]byte("type"), {}}))
	require.NoError(t, w.Flush())

	frames, err := ReadMessage(bufio.NewReader(&buf), DefaultLimits)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, []byte("type"), frames[0])
	assert.NotNil(t, frames[1])
	assert.Empty(t, frames[1])
}

func TestWriteMessage_Empty(t *testing.T) {
	w := bufio.NewWriter(io.Discard)
	assert.ErrorIs(t, WriteMessage(w, nil), ErrEmptyMessage)
}

func TestReadMessage_Limits(t *testing.T) {
	encode := func(frames ...[]byte) *bufio.Reader {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		require.NoError(t, WriteMessage(w, frames))
		require.NoError(t, w.Flush())
		return bufio.NewReader(&buf)
	}

	_, err := ReadMessage(encode([]byte("a"), []byte("b"), []byte("c")), Limits{MaxFrames: 2, MaxFrameBytes: 10})
	assert.ErrorIs(t, err, ErrTooManyFrames)

	_, err = ReadMessage(encode(bytes.Repeat([]byte("x"), 11)), Limits{MaxFrames: 2, MaxFrameBytes: 10})
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadMessage_Truncated(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, WriteMessage(w, [][]byte{[]byte("hello")}))
	require.NoError(t, w.Flush())

	data := buf.Bytes()[:buf.Len()-2]
	_, err := ReadMessage(bufio.NewReader(bytes.NewReader(data)), DefaultLimits)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestGreeting(t *testing.T) {
	g := greeting{Kind: KindDealer, Identity: []byte("client-1")}
	parsed, err := parseGreeting(g.frames())
	require.NoError(t, err)
	assert.Equal(t, g, parsed)

	_, err = parseGreeting([][]byte{[]byte("HTTP/1.1")})
	assert.ErrorIs(t, err, ErrBadGreeting)
}

func TestKind_Compatible(t *testing.T) {
	assert.True(t, KindPub.Compatible(KindSub))
	assert.True(t, KindSub.Compatible(KindPub))
	assert.True(t, KindRouter.Compatible(KindDealer))
	assert.False(t, KindPub.Compatible(KindDealer))
	assert.False(t, KindSub.Compatible(KindSub))
	assert.False(t, KindMonitor.Compatible(KindPub))
}

func TestEvent_EncodeDecode(t *testing.T) {
	ev, value, addr, err := DecodeEvent(EncodeEvent(EventAccepted, 7, "127.0.0.1:5555"))
	require.NoError(t, err)
	assert.Equal(t, EventAccepted, ev)
	assert.Equal(t, uint32(7), value)
	assert.Equal(t, "127.0.0.1:5555", addr)

	_, _, _, err = DecodeEvent([][]byte{{1, 2}})
	assert.ErrorIs(t, err, ErrBadEvent)
	assert.Equal(t, "accepted", EventAccepted.String())
}

func TestPrefixSet(t *testing.T) {
	s := make(prefixSet)
	assert.False(t, s.matches([]byte("abc")))

	s.add([]byte("ab"))
	s.add([]byte("ab"))
	assert.True(t, s.matches([]byte("abc")))
	assert.False(t, s.matches([]byte("a")))
	assert.Len(t, s.messages(), 2)

	assert.True(t, s.remove([]byte("ab")))
	assert.True(t, s.matches([]byte("abc")))
	assert.True(t, s.remove([]byte("ab")))
	assert.False(t, s.matches([]byte("abc")))
	assert.False(t, s.remove([]byte("ab")))
}
