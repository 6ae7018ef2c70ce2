package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanModelJSON_PassesThroughBareJSON(t *testing.T) {
	raw := `[{"date":"2025-01-02","amount":10.5}]`
	assert.Equal(t, raw, cleanModelJSON(raw))
}

func TestCleanModelJSON_StripsJSONFence(t *testing.T) {
	raw := "```json\n[{\"amount\": 1}]\n```"
	assert.Equal(t, `[{"amount": 1}]`, cleanModelJSON(raw))
}

func TestCleanModelJSON_StripsPlainFence(t *testing.T) {
	raw := "```\n{\"merchant\": \"Cafe\"}\n```"
	assert.Equal(t, `{"merchant": "Cafe"}`, cleanModelJSON(raw))
}

func TestCleanModelJSON_TrimsSurroundingWhitespace(t *testing.T) {
	raw := "  \n{\"a\":1}\n  "
	assert.Equal(t, `{"a":1}`, cleanModelJSON(raw))
}
