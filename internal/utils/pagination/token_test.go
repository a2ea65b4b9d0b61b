package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	submittedAt := time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(submittedAt, "7b1f6f0e-claim")
	assert.NotEmpty(t, token)

	gotTime, gotID, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, submittedAt.Equal(gotTime))
	assert.Equal(t, "7b1f6f0e-claim", gotID)
}

func TestEncodeToken_NormalizesToUTC(t *testing.T) {
	local := time.Date(2024, 5, 15, 16, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))

	gotTime, _, err := DecodeToken(EncodeToken(local, "c1"))

	require.NoError(t, err)
	assert.Equal(t, time.UTC, gotTime.Location())
	assert.True(t, local.Equal(gotTime))
}

func TestDecodeToken_Invalid(t *testing.T) {
	cases := map[string]string{
		"not base64":   "!!!",
		"missing id":   base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|")),
		"no separator": base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z")),
		"bad time":     base64.URLEncoding.EncodeToString([]byte("yesterday|c1")),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeToken(token)
			assert.Error(t, err)
		})
	}
}
