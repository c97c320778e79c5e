package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		p, err := decodePayload([]byte(` [{"id": 1}, {"id": 2}]`))
		require.NoError(t, err)
		assert.Equal(t, shapeSequence, p.shape)
		assert.Len(t, p.sequence, 2)
	})

	t.Run("record", func(t *testing.T) {
		p, err := decodePayload([]byte(`{"recipes": []}`))
		require.NoError(t, err)
		assert.Equal(t, shapeRecord, p.shape)
		assert.Contains(t, p.record, "recipes")
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := decodePayload([]byte("   "))
		assert.Error(t, err)
	})

	t.Run("scalar", func(t *testing.T) {
		_, err := decodePayload([]byte(`"nope"`))
		assert.Error(t, err)
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := decodePayload([]byte(`[{"id": 1}`))
		assert.Error(t, err)
	})
}

func TestQuotaExceeded(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"documented quota shape", `{"status": "failure", "code": 402, "message": "Your daily points limit of 150 has been reached."}`, true},
		{"failure with other code", `{"status": "failure", "code": 401, "message": "unauthorized"}`, false},
		{"402 without failure status", `{"status": "success", "code": 402}`, false},
		{"code as string", `{"status": "failure", "code": "402"}`, false},
		{"missing code", `{"status": "failure"}`, false},
		{"normal record", `{"recipes": [{"id": 1}]}`, false},
		{"sequence is never quota", `[{"status": "failure", "code": 402}]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodePayload([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.quotaExceeded())
		})
	}
}

func TestPayloadAccessors(t *testing.T) {
	record, err := decodePayload([]byte(`{"results": [], "message": "hello"}`))
	require.NoError(t, err)

	_, err = record.items()
	assert.Error(t, err)

	raw, err := record.field("results")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	_, err = record.field("recipes")
	assert.Error(t, err)
	assert.Equal(t, "hello", record.message())

	seq, err := decodePayload([]byte(`[]`))
	require.NoError(t, err)
	_, err = seq.field("results")
	assert.Error(t, err)
	assert.Equal(t, "", seq.message())
}
