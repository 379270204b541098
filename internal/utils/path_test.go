package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{name: "no parts", parts: nil, want: ""},
		{name: "single part", parts: []string{"alice"}, want: "alice"},
		{name: "trims slashes", parts: []string{"/alice/", "/x.txt"}, want: "alice/x.txt"},
		{name: "drops empty", parts: []string{"alice", "", "/", "x"}, want: "alice/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinKey(tt.parts...))
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"a/b\\c", "a_b_c"},
		{"  spaced  ", "spaced"},
		{"tab\there", "tab_here"},
		{"..", "_"},
		{"", "_"},
		{"résumé.txt", "résumé.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestStoragePath(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	got := StoragePath("alice", "../x.txt", "id1", at)
	assert.Equal(t, "alice/1700000000123_id1_.._x.txt", got)
}
