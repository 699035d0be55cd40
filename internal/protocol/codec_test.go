package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"id only", []any{int64(0)}, "[0]\n"},
		{"mixed arguments unquoted", []any{1, 2, "x"}, "[1,2,x]\n"},
		{"float argument", []any{int64(4), 2.5}, "[4,2.5]\n"},
		{"bool argument", []any{int64(7), true}, "[7,true]\n"},
		{"no arguments", nil, "[]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeRequest(tt.args...))
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("decodes reply with normalized numbers", func(t *testing.T) {
		reply, err := DecodeResponse(`{"status":1,"cmd_id":4,"volume":2.5,"name":"pump"}` + "\n")
		require.NoError(t, err)

		assert.Equal(t, int64(1), reply["status"])
		assert.Equal(t, int64(4), reply["cmd_id"])
		assert.Equal(t, 2.5, reply["volume"])
		assert.Equal(t, "pump", reply["name"])
	})

	t.Run("normalizes nested structures", func(t *testing.T) {
		reply, err := DecodeResponse(`{"status":1,"cmd_id":9,"ranges":[1,2,3],"info":{"count":5}}`)
		require.NoError(t, err)

		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, reply["ranges"])
		info, ok := reply["info"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, int64(5), info["count"])
	})

	t.Run("empty line is no data, not an error", func(t *testing.T) {
		for _, line := range []string{"", "\n", "\r\n"} {
			reply, err := DecodeResponse(line)
			require.NoError(t, err)
			assert.Empty(t, reply)
		}
	})

	t.Run("malformed line carries parser diagnostic", func(t *testing.T) {
		_, err := DecodeResponse("{status:")
		require.Error(t, err)

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "{status:", malformed.Line)
		assert.Error(t, malformed.Unwrap())
	})
}

func TestInt64(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int64
		wantOK bool
	}{
		{"int64", int64(42), 42, true},
		{"int", 7, 7, true},
		{"integral float", float64(3), 3, true},
		{"fractional float", 3.5, 0, false},
		{"string", "3", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int64(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
