package transport

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"time"
)

const (
	greetingSignature = "ZEROEQ"
	greetingVersion   = 1
	maxIdentityBytes  = 255
)

// greeting 连接建立后双方交换的首条消息
//
//	[ "ZEROEQ" ] [ version, kind ] [ identity ]
type greeting struct {
	Kind     Kind
	Identity []byte
}

func (g greeting) frames() [][]byte {
	return [][]byte{
		[]byte(greetingSignature),
		{greetingVersion, byte(g.Kind)},
		g.Identity,
	}
}

func parseGreeting(frames [][]byte) (greeting, error) {
	if len(frames) != 3 || !bytes.Equal(frames[0], []byte(greetingSignature)) {
		return greeting{}, ErrBadGreeting
	}
	if len(frames[1]) != 2 || frames[1][0] != greetingVersion {
		return greeting{}, fmt.Errorf("%w: unsupported version", ErrBadGreeting)
	}
	if len(frames[2]) > maxIdentityBytes {
		return greeting{}, fmt.Errorf("%w: identity too long", ErrBadGreeting)
	}
	return greeting{Kind: Kind(frames[1][1]), Identity: frames[2]}, nil
}

// handshake 交换问候并校验对端类型
func handshake(conn net.Conn, r *bufio.Reader, w *bufio.Writer, local greeting, timeout time.Duration) (greeting, error) {
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
		defer func() { _ = conn.SetDeadline(time.Time{}) }()
	}

	if err := WriteMessage(w, local.frames()); err != nil {
		return greeting{}, err
	}
	if err := w.Flush(); err != nil {
		return greeting{}, err
	}

	frames, err := ReadMessage(r, Limits{MaxFrames: 3, MaxFrameBytes: maxIdentityBytes})
	if err != nil {
		return greeting{}, fmt.Errorf("%w: %v", ErrBadGreeting, err)
	}
	remote, err := parseGreeting(frames)
	if err != nil {
		return greeting{}, err
	}
	if !local.Kind.Compatible(remote.Kind) {
		return greeting{}, fmt.Errorf("%w: %s <-> %s", ErrIncompatiblePeer, local.Kind, remote.Kind)
	}
	return remote, nil
}
