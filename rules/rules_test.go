package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		rules   []Rule
		want    string
		matched bool
	}{
		{
			name:    "simple domain swap",
			url:     "http://tracker.old.com:6969/announce",
			rules:   []Rule{{OldDomain: "tracker.old.com", NewDomain: "tracker.new.com", Enabled: true}},
			want:    "http://tracker.new.com:6969/announce",
			matched: true,
		},
		{
			name:    "every occurrence is replaced",
			url:     "https://old.org/announce?ref=old.org",
			rules:   []Rule{{OldDomain: "old.org", NewDomain: "new.org", Enabled: true}},
			want:    "https://new.org/announce?ref=new.org",
			matched: true,
		},
		{
			name: "first matching rule wins",
			url:  "udp://tracker.old.com:1337/announce",
			rules: []Rule{
				{OldDomain: "old.com", NewDomain: "first.com", Enabled: true},
				{OldDomain: "tracker.old.com", NewDomain: "second.com", Enabled: true},
			},
			want:    "udp://tracker.first.com:1337/announce",
			matched: true,
		},
		{
			name: "disabled rule is skipped",
			url:  "http://tracker.old.com/announce",
			rules: []Rule{
				{OldDomain: "tracker.old.com", NewDomain: "disabled.com", Enabled: false},
				{OldDomain: "tracker.old.com", NewDomain: "enabled.com", Enabled: true},
			},
			want:    "http://enabled.com/announce",
			matched: true,
		},
		{
			name:  "only disabled rules",
			url:   "http://tracker.old.com/announce",
			rules: []Rule{{OldDomain: "tracker.old.com", NewDomain: "x.com", Enabled: false}},
		},
		{
			name:  "blank old domain never matches",
			url:   "http://tracker.old.com/announce",
			rules: []Rule{{OldDomain: "   ", NewDomain: "x.com", Enabled: true}},
		},
		{
			name:    "domains are trimmed",
			url:     "http://tracker.old.com/announce",
			rules:   []Rule{{OldDomain: " tracker.old.com ", NewDomain: " tracker.new.com\t", Enabled: true}},
			want:    "http://tracker.new.com/announce",
			matched: true,
		},
		{
			name:  "match is case sensitive",
			url:   "http://Tracker.Old.com/announce",
			rules: []Rule{{OldDomain: "tracker.old.com", NewDomain: "x.com", Enabled: true}},
		},
		{
			name:  "no rules",
			url:   "http://tracker.old.com/announce",
			rules: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(tt.url, tt.rules)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountActive(t *testing.T) {
	rules := []Rule{
		{OldDomain: "a.com", Enabled: true},
		{OldDomain: "b.com", Enabled: false},
		{OldDomain: "", Enabled: true},
		{OldDomain: "c.com", NewDomain: "d.com", Enabled: true},
	}
	assert.Equal(t, 2, CountActive(rules))
}
