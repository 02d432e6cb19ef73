package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  Auth("cookie must contain %s", "sessionid"),
			want: "auth error (code 0): cookie must contain sessionid",
		},
		{
			name: "with cause",
			err:  Request(502, io.ErrUnexpectedEOF, "GET %s", "/"),
			want: "request error (code 502): GET /: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("loading page: %w", Wrap(ErrorTypeParsing, io.EOF, "bad json"))

	assert.True(t, IsType(err, ErrorTypeParsing))
	assert.False(t, IsType(err, ErrorTypeAuth))
	assert.False(t, IsType(io.EOF, ErrorTypeParsing))
	assert.False(t, IsType(nil, ErrorTypeParsing))
	assert.True(t, stderrors.Is(err, io.EOF))
}

func TestConfiguration(t *testing.T) {
	err := Configuration("exactly one of %d sources", 3)
	assert.Equal(t, ErrorTypeConfiguration, err.Type)
	assert.Nil(t, err.Unwrap())
}
