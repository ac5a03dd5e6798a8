package firebird

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"USERS":         "users",
		"USERS   ":      "users",
		"RDB$RELATIONS": "rdb$relations",
		"CREATED_AT":    "created_at",
		"MixedCase":     "MixedCase",
		"users":         "users",
		"USER":          "USER",
		"ORDER":         "ORDER",
		"1ST_PLACE":     "1ST_PLACE",
		"HAS SPACE":     "HAS SPACE",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), "NormalizeName(%q)", in)
	}
}

func TestDenormalizeName(t *testing.T) {
	tests := map[string]string{
		"users":      "USERS",
		"created_at": "CREATED_AT",
		"MixedCase":  "MixedCase",
		"USERS":      "USERS",
		"user":       "user",
		"order":      "order",
		"has space":  "has space",
	}
	for in, want := range tests {
		assert.Equal(t, want, DenormalizeName(in), "DenormalizeName(%q)", in)
	}
}

func TestNameRoundTrip(t *testing.T) {
	for _, name := range []string{"users", "pets", "owner_id"} {
		assert.Equal(t, name, NormalizeName(DenormalizeName(name)))
	}
}

func TestRequiresQuotes(t *testing.T) {
	assert.True(t, RequiresQuotes("select"))
	assert.True(t, RequiresQuotes("_hidden"))
	assert.True(t, RequiresQuotes("Users"))
	assert.False(t, RequiresQuotes("users"))
	assert.False(t, RequiresQuotes("a1$b"))
}
