package keyglob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func keySet(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"errors.*", "errors.E001", true},
		{"errors.*", "errors.network.timeout", false},
		{"form.*.label", "form.email.label", true},
		{"form.*.label", "form.email.placeholder", false},
		{"form.*.label", "form.submit", false},
		{"Common.btn*", "Common.btnSubmit", true},
		{"Common.*Label", "Common.submitLabel", true},
		{"Common.btn*Label", "Common.btnSubmitLabel", true},
		{"Common.btn*Label", "Common.btnLabel", true},
		{"Common.ab*ab", "Common.ab", false},
		{"Common.a*b*c", "Common.axxbyyc", true},
		{"Common.a*b*c", "Common.axxc", false},
		{"Common.submit", "Common.submit", true},
		{"common.submit", "Common.submit", false},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern+"~"+tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.pattern, tc.key))
		})
	}
}

func TestExpand(t *testing.T) {
	keys := keySet(
		"form.email.label",
		"form.email.placeholder",
		"form.password.label",
		"form.password.placeholder",
		"form.submit",
	)

	assert.Equal(t, []string{"form.email.label", "form.password.label"}, Expand("form.*.label", keys))
	assert.Equal(t, []string{"form.submit"}, Expand("form.submit", keys))
	assert.Empty(t, Expand("form.delete", keys))
	assert.Empty(t, Expand("other.*", keys))
}

func TestIsGlob(t *testing.T) {
	assert.True(t, IsGlob("errors.*"))
	assert.False(t, IsGlob("Common.submit"))
}
