package linking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilteater/backend/linking"
)

func TestEncodeQRPayload(t *testing.T) {
	assert.Equal(t, "parent-1:123456", linking.EncodeQRPayload("parent-1", "123456"))
}

func TestParseQRPayload(t *testing.T) {
	parentID, code, err := linking.ParseQRPayload("parent-1:123456")
	require.NoError(t, err)
	assert.Equal(t, "parent-1", parentID)
	assert.Equal(t, "123456", code)
}

func TestParseQRPayloadRoundTrip(t *testing.T) {
	payload := linking.EncodeQRPayload("8f14e45f-ceea-4467-a1f3-0a47e6b9b0f2", "042137")

	parentID, code, err := linking.ParseQRPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "8f14e45f-ceea-4467-a1f3-0a47e6b9b0f2", parentID)
	assert.Equal(t, "042137", code)
}

func TestParseQRPayloadMalformed(t *testing.T) {
	cases := []string{
		"",
		"nodelimiter",
		"a:b:c",
		"::",
		"a:b:",
	}
	for _, payload := range cases {
		_, _, err := linking.ParseQRPayload(payload)
		assert.ErrorIs(t, err, linking.ErrMalformedQRPayload, "payload %q", payload)
	}
}
