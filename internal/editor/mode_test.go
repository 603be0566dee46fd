package editor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   Mode
	}{
		{
			name:   "master flag alone",
			params: url.Values{"master": {"true"}},
			want:   Mode{Kind: MasterMode},
		},
		{
			name:   "resume and job ids select tailored",
			params: url.Values{"resumeId": {"12"}, "jobId": {"7"}},
			want:   Mode{Kind: TailoredMode, ResumeID: 12, JobID: 7},
		},
		{
			name:   "resume id alone selects version view",
			params: url.Values{"resumeId": {"42"}},
			want:   Mode{Kind: ByVersionMode, ResumeID: 42},
		},
		{
			name:   "no params is freeform",
			params: url.Values{},
			want:   Mode{Kind: FreeformMode},
		},
		{
			name:   "master flag with job id degrades to freeform",
			params: url.Values{"master": {"true"}, "jobId": {"3"}},
			want:   Mode{Kind: FreeformMode},
		},
		{
			name:   "resume id wins over master flag",
			params: url.Values{"master": {"true"}, "resumeId": {"9"}},
			want:   Mode{Kind: ByVersionMode, ResumeID: 9},
		},
		{
			name:   "malformed resume id treated as absent",
			params: url.Values{"resumeId": {"abc"}, "master": {"true"}},
			want:   Mode{Kind: MasterMode},
		},
		{
			name:   "master flag must be exactly true",
			params: url.Values{"master": {"1"}},
			want:   Mode{Kind: FreeformMode},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMode(tt.params))
		})
	}
}

func TestResolveIdentity(t *testing.T) {
	t.Run("userInfo param wins over cache", func(t *testing.T) {
		params := url.Values{"userInfo": {`{"email":"alice@example.com"}`}}
		assert.Equal(t, "alice@example.com", ResolveIdentity(params, "cached@example.com"))
	})

	t.Run("falls back to cached identity", func(t *testing.T) {
		assert.Equal(t, "cached@example.com", ResolveIdentity(url.Values{}, "cached@example.com"))
	})

	t.Run("malformed userInfo falls back to cache", func(t *testing.T) {
		params := url.Values{"userInfo": {"{not json"}}
		assert.Equal(t, "cached@example.com", ResolveIdentity(params, "cached@example.com"))
	})

	t.Run("no identity at all", func(t *testing.T) {
		assert.Equal(t, "", ResolveIdentity(url.Values{}, ""))
	})
}
