package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
)

// ============================================================================
//                              TypeID - 类型标识
// ============================================================================

// TypeIDSize TypeID 的线路长度（字节）
const TypeIDSize = 16

// TypeID 128 位类型标识符
//
// 可比较、可作为 map 键，是发布订阅与请求应答的唯一路由键。
type TypeID struct {
	High uint64
	Low  uint64
}

var (
	// UnhandledTypeID 未处理请求的应答类型（零值）
	UnhandledTypeID = TypeID{}

	// MeerkatTypeID 新订阅者标记主题
	//
	// 每个订阅端在每条新连接上都会订阅该主题，发布端的监视器据此识别
	// 新的对端，而普通主题的订阅/退订不计入。
	MeerkatTypeID = MakeTypeID("zeroeq::MEERKAT")
)

// MakeTypeID 由规范名称派生 TypeID（MurmurHash3 x64 128）
func MakeTypeID(name string) TypeID {
	h1, h2 := murmur3.Sum128([]byte(name))
	return TypeID{High: h1, Low: h2}
}

// NewTypeID 生成随机 TypeID
func NewTypeID() TypeID {
	u := uuid.New()
	return TypeIDFromBytesMust(u[:])
}

// TypeIDFromBytes 从 16 字节大端序解析 TypeID
func TypeIDFromBytes(b []byte) (TypeID, error) {
	if len(b) != TypeIDSize {
		return TypeID{}, fmt.Errorf("%w: got %d bytes", ErrInvalidTypeID, len(b))
	}
	return TypeID{
		High: binary.BigEndian.Uint64(b[0:8]),
		Low:  binary.BigEndian.Uint64(b[8:16]),
	}, nil
}

// TypeIDFromBytesMust 解析 TypeID，失败则 panic
//
// 仅用于长度已知正确的场景。
func TypeIDFromBytesMust(b []byte) TypeID {
	id, err := TypeIDFromBytes(b)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseTypeID 解析 32 位十六进制字符串
func ParseTypeID(s string) (TypeID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return TypeID{}, fmt.Errorf("%w: %v", ErrInvalidTypeID, err)
	}
	return TypeIDFromBytes(b)
}

// Bytes 返回 16 字节大端序表示
func (id TypeID) Bytes() []byte {
	b := make([]byte, TypeIDSize)
	binary.BigEndian.PutUint64(b[0:8], id.High)
	binary.BigEndian.PutUint64(b[8:16], id.Low)
	return b
}

// String 返回十六进制表示
func (id TypeID) String() string {
	return hex.EncodeToString(id.Bytes())
}

// ShortString 返回日志用的短表示
func (id TypeID) ShortString() string {
	return id.String()[:8]
}

// IsZero 是否为零值
func (id TypeID) IsZero() bool {
	return id.High == 0 && id.Low == 0
}

// ============================================================================
//                              Identity - 进程身份
// ============================================================================

// Identity 发现身份
//
// 附加在每条服务公告上，浏览端据此过滤同一身份发出的公告（回环抑制），
// 而非按地址过滤，从而同主机上的其它合法对端仍可被发现。
type Identity string

// NewIdentity 生成随机身份
func NewIdentity() Identity {
	return Identity(uuid.NewString())
}

// String 返回字符串表示
func (i Identity) String() string {
	return string(i)
}

// ShortString 返回日志用的短表示
func (i Identity) ShortString() string {
	if len(i) <= 8 {
		return string(i)
	}
	return string(i[:8])
}

// IsEmpty 是否为空
func (i Identity) IsEmpty() bool {
	return i == ""
}
