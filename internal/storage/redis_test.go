package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestKey(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain url",
			in:   "https://acme.test/",
			want: "audit:latest:acme.test",
		},
		{
			name: "scheme and case do not split the index",
			in:   "HTTP://ACME.TEST",
			want: "audit:latest:acme.test",
		},
		{
			name: "path preserved",
			in:   "https://acme.test/branch/",
			want: "audit:latest:acme.test/branch",
		},
		{
			name: "unparseable input used verbatim",
			in:   "not a url",
			want: "audit:latest:not a url",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, latestKey(tc.in))
		})
	}
}
