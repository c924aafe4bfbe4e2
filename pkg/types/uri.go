package types

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultScheme 默认传输协议
const DefaultScheme = "tcp"

// URI 端点地址
//
// 格式: [scheme://][host][:port]
//   - host 为空或 "*" 表示绑定所有网络接口
//   - port 为 0 表示绑定任意空闲端口（绑定后解析为实际端口）
type URI struct {
	Scheme string
	Host   string
	Port   int
}

// ParseURI 解析地址字符串
func ParseURI(s string) (URI, error) {
	u := URI{Scheme: DefaultScheme}
	rest := strings.TrimSpace(s)

	if i := strings.Index(rest, "://"); i >= 0 {
		u.Scheme = strings.ToLower(rest[:i])
		rest = rest[i+3:]
	}
	if u.Scheme != DefaultScheme {
		return URI{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, u.Scheme)
	}
	if strings.ContainsAny(rest, "/?#") {
		return URI{}, fmt.Errorf("%w: unexpected path in %q", ErrInvalidURI, s)
	}

	host, portStr, err := splitHostPort(rest)
	if err != nil {
		return URI{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return URI{}, fmt.Errorf("%w: invalid port %q", ErrInvalidURI, portStr)
		}
		u.Port = port
	}
	u.Host = host
	return u, nil
}

// MustParseURI 解析地址，失败则 panic
func MustParseURI(s string) URI {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

// splitHostPort 拆分 host 与 port，允许省略 port
func splitHostPort(s string) (string, string, error) {
	if s == "" {
		return "", "", nil
	}
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return "", "", fmt.Errorf("missing ']' in %q", s)
		}
		host := s[1:end]
		tail := s[end+1:]
		if tail == "" {
			return host, "", nil
		}
		if !strings.HasPrefix(tail, ":") {
			return "", "", fmt.Errorf("unexpected %q after host", tail)
		}
		return host, tail[1:], nil
	}
	if strings.Count(s, ":") > 1 {
		// 未加括号的 IPv6 地址，视为无端口
		return s, "", nil
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[:i], s[i+1:], nil
	}
	return s, "", nil
}

// IsWildcard 是否绑定所有网络接口
func (u URI) IsWildcard() bool {
	return u.Host == "" || u.Host == "*"
}

// HasPort 是否指定了端口
func (u URI) HasPort() bool {
	return u.Port != 0
}

// HostPort 返回 net.Dial/net.Listen 使用的地址
func (u URI) HostPort() string {
	host := u.Host
	if u.IsWildcard() {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(u.Port))
}

// WithHost 返回替换 host 后的副本
func (u URI) WithHost(host string) URI {
	u.Host = host
	return u
}

// WithPort 返回替换 port 后的副本
func (u URI) WithPort(port int) URI {
	u.Port = port
	return u
}

// String 返回 scheme://host:port 形式
func (u URI) String() string {
	scheme := u.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	host := u.Host
	if host == "" {
		host = "*"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if u.Port == 0 {
		return scheme + "://" + host
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, u.Port)
}
