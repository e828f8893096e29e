package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList_Allows(t *testing.T) {
	t.Parallel()

	a := NewAllowList(DefaultAllowedDomains)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.linkedin.com/in/ada", true},
		{"https://linkedin.com/in/ada", true},
		{"https://uk.linkedin.com/in/ada", true},
		{"https://github.com/ada", true},
		{"http://GITHUB.com/ada", true},
		{"https://www.crunchbase.com/person/ada", true},
		{"https://about.me/ada", true},
		{"https://github.com:443/ada", true},
		{"https://notgithub.com/ada", false},
		{"https://github.com.evil.example/ada", false},
		{"https://example.com/?ref=github.com", false},
		{"ftp://github.com/ada", false},
		{"github.com/ada", false},
		{"::not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Allows(tt.url), tt.url)
	}
}

func TestAllowList_Normalizes(t *testing.T) {
	t.Parallel()

	a := NewAllowList([]string{" WWW.Example.COM ", ".about.me", ""})
	assert.Equal(t, []string{"example.com", "about.me"}, a.Domains())
	assert.True(t, a.Allows("https://blog.example.com/x"))
}

func TestAllowList_Nil(t *testing.T) {
	t.Parallel()

	var a *AllowList
	assert.False(t, a.Allows("https://github.com/ada"))
	assert.False(t, NewAllowList(nil).Allows("https://github.com/ada"))
}
