package transport

import (
	"bufio"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// Limits 消息解码限制
type Limits struct {
	MaxFrames     int
	MaxFrameBytes int
}

// DefaultLimits 默认解码限制
var DefaultLimits = Limits{MaxFrames: 16, MaxFrameBytes: 64 << 20}

// WriteMessage 写出一条多帧消息（不刷新缓冲）
//
// 编码：uvarint(帧数) 后接每帧 uvarint(长度) + 字节。
func WriteMessage(w *bufio.Writer, frames [][]byte) error {
	if len(frames) == 0 {
		return ErrEmptyMessage
	}
	if _, err := w.Write(varint.ToUvarint(uint64(len(frames)))); err != nil {
		return err
	}
	for _, f := range frames {
		if _, err := w.Write(varint.ToUvarint(uint64(len(f)))); err != nil {
			return err
		}
		if _, err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage 读取一条多帧消息
func ReadMessage(r *bufio.Reader, limits Limits) ([][]byte, error) {
	count, err := varint.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrEmptyMessage
	}
	if count > uint64(limits.MaxFrames) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFrames, count, limits.MaxFrames)
	}

	frames := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		size, err := varint.ReadUvarint(r)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if size > uint64(limits.MaxFrameBytes) {
			return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, size, limits.MaxFrameBytes)
		}
		frame := make([]byte, size)
		if _, err := io.ReadFull(r, frame); err != nil {
			return nil, unexpectedEOF(err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// unexpectedEOF 消息中途结束视为截断
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// cloneMessage 复制帧切片（帧内容共享）
func cloneMessage(frames [][]byte) [][]byte {
	out := make([][]byte, len(frames))
	copy(out, frames)
	return out
}
