package session

import (
	"encoding/base64"
	"testing"

	"instagraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCookie() map[string]string {
	return map[string]string{
		"csrftoken": "YTQHujAgMhyveLvvuwCfw9CPI8ROAHoy",
		"sessionid": "12345678%3Aabcdef%3A26",
	}
}

func TestSet(t *testing.T) {
	t.Run("valid cookie", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Set(validCookie()))
		assert.True(t, s.Valid())
		assert.Equal(t, validCookie(), s.Cookie())
	})

	t.Run("extra fields pass through", func(t *testing.T) {
		s := NewStore()
		cookie := validCookie()
		cookie["ds_user_id"] = "192008031"
		cookie["mid"] = "Z5NxAAAEAAHNiER"
		require.NoError(t, s.Set(cookie))

		v, err := s.Param("ds_user_id")
		require.NoError(t, err)
		assert.Equal(t, "192008031", v)
	})

	t.Run("copies input", func(t *testing.T) {
		s := NewStore()
		cookie := validCookie()
		require.NoError(t, s.Set(cookie))

		cookie["csrftoken"] = "changed"
		v, _ := s.Param("csrftoken")
		assert.Equal(t, "YTQHujAgMhyveLvvuwCfw9CPI8ROAHoy", v)
	})

	t.Run("replaces whole mapping", func(t *testing.T) {
		s := NewStore()
		first := validCookie()
		first["mid"] = "old"
		require.NoError(t, s.Set(first))
		require.NoError(t, s.Set(validCookie()))

		_, err := s.Param("mid")
		assert.True(t, errors.IsType(err, errors.ErrorTypeMissingParam))
	})
}

func TestSetRejectsIncompleteCookie(t *testing.T) {
	tests := []struct {
		name   string
		cookie map[string]string
	}{
		{name: "nil", cookie: nil},
		{name: "empty", cookie: map[string]string{}},
		{name: "missing sessionid", cookie: map[string]string{"csrftoken": "a"}},
		{name: "missing csrftoken", cookie: map[string]string{"sessionid": "b"}},
		{name: "unrelated keys", cookie: map[string]string{"mid": "c", "ig_did": "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.Set(validCookie()))

			err := s.Set(tt.cookie)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))

			// prior state is unchanged
			assert.Equal(t, validCookie(), s.Cookie())
		})
	}
}

func TestParam(t *testing.T) {
	s := NewStore()

	_, err := s.Param("csrftoken")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMissingParam))

	require.NoError(t, s.Set(validCookie()))
	v, err := s.Param("sessionid")
	require.NoError(t, err)
	assert.Equal(t, "12345678%3Aabcdef%3A26", v)
}

func TestStage(t *testing.T) {
	s := NewStore()
	s.Stage(map[string]string{"csrftoken": "anon", "mid": "m1"})

	assert.False(t, s.Valid())
	assert.Empty(t, s.Cookie())

	v, err := s.Param("csrftoken")
	require.NoError(t, err)
	assert.Equal(t, "anon", v)
	assert.Equal(t, map[string]string{"csrftoken": "anon", "mid": "m1"}, s.RequestCookies())

	// a full session supersedes the handshake cookies
	require.NoError(t, s.Set(validCookie()))
	_, err = s.Param("mid")
	assert.Error(t, err)
	assert.Equal(t, validCookie(), s.RequestCookies())
}

func TestExportImportRoundTrip(t *testing.T) {
	cookies := []map[string]string{
		validCookie(),
		{"csrftoken": "", "sessionid": ""},
		{"csrftoken": "a=b;c", "sessionid": "ü/+==", "rur": "\"FRC\\054123\""},
		{"csrftoken": "x", "sessionid": "y", "ds_user_id": "1", "mid": "2", "ig_did": "3"},
	}

	for _, cookie := range cookies {
		src := NewStore()
		require.NoError(t, src.Set(cookie))

		encoded, err := src.Export()
		require.NoError(t, err)

		dst := NewStore()
		require.NoError(t, dst.Import(encoded))
		assert.Equal(t, cookie, dst.Cookie())

		again, err := dst.Export()
		require.NoError(t, err)
		assert.Equal(t, encoded, again, "export should be stable")
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "not base64", encoded: "%%%"},
		{name: "not json", encoded: base64.StdEncoding.EncodeToString([]byte("{'csrftoken': 'a'"))},
		{name: "missing sessionid", encoded: base64.StdEncoding.EncodeToString([]byte(`{"csrftoken":"a"}`))},
		{name: "empty", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.Set(validCookie()))

			err := s.Import(tt.encoded)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
			assert.Equal(t, validCookie(), s.Cookie())
		})
	}
}
