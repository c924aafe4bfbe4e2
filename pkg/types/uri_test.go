package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    URI
		wantErr bool
	}{
		{"空地址", "", URI{Scheme: "tcp"}, false},
		{"通配", "*", URI{Scheme: "tcp", Host: "*"}, false},
		{"通配带端口", "*:1234", URI{Scheme: "tcp", Host: "*", Port: 1234}, false},
		{"仅端口", ":1234", URI{Scheme: "tcp", Port: 1234}, false},
		{"仅主机", "localhost", URI{Scheme: "tcp", Host: "localhost"}, false},
		{"主机端口", "localhost:1234", URI{Scheme: "tcp", Host: "localhost", Port: 1234}, false},
		{"带协议", "tcp://127.0.0.1:5555", URI{Scheme: "tcp", Host: "127.0.0.1", Port: 5555}, false},
		{"IPv6", "[::1]:80", URI{Scheme: "tcp", Host: "::1", Port: 80}, false},
		{"IPv6 无端口", "[::1]", URI{Scheme: "tcp", Host: "::1"}, false},
		{"端口越界", "localhost:70000", URI{}, true},
		{"端口非数字", "localhost:abc", URI{}, true},
		{"不支持的协议", "inproc://foo", URI{}, true},
		{"包含路径", "localhost:1/path", URI{}, true},
		{"缺少右括号", "[::1:80", URI{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURIHelpers(t *testing.T) {
	u := MustParseURI("*:0")
	assert.True(t, u.IsWildcard())
	assert.False(t, u.HasPort())
	assert.Equal(t, ":0", u.HostPort())

	u = u.WithHost("127.0.0.1").WithPort(4242)
	assert.False(t, u.IsWildcard())
	assert.True(t, u.HasPort())
	assert.Equal(t, "127.0.0.1:4242", u.HostPort())
	assert.Equal(t, "tcp://127.0.0.1:4242", u.String())

	assert.Equal(t, "tcp://[::1]:80", MustParseURI("[::1]:80").String())
	assert.Equal(t, "tcp://*", URI{}.String())
}

func TestSession(t *testing.T) {
	assert.ErrorIs(t, ValidateSession(""), ErrInvalidSession)
	assert.NoError(t, ValidateSession(NullSession))
	assert.NoError(t, ValidateSession("foo"))
	assert.True(t, IsDiscoveryDisabled(NullSession))
	assert.False(t, IsDiscoveryDisabled(DefaultSession))
}
