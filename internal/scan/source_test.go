package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUserID(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"json user_id", `{"user_id":"42"}`, "42"},
		{"json userId", `{"userId":"abc"}`, "abc"},
		{"json id", `{"id":"u-7"}`, "u-7"},
		{"json numeric id", `{"id":42}`, "42"},
		{"json key priority", `{"id":"low","user_id":"high"}`, "high"},
		{"json without id", `{"name":"Ada"}`, ""},
		{"json empty string id", `{"user_id":"  "}`, ""},
		{"raw string", "42", "42"},
		{"raw with whitespace", "  42\n", "42"},
		{"invalid json treated raw", `{not json}`, "{not json}"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveUserID(tc.payload))
		})
	}
}

func TestStripScheme(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"badge:42", "42"},
		{"evt:badge:42", "42"},
		{"42", "42"},
		{"badge: 42 ", "42"},
		{"badge:", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripScheme(tc.in), "input %q", tc.in)
	}
}

func TestPreferredIndexPrefersRearLabel(t *testing.T) {
	devices := []DeviceInfo{
		{Path: "/dev/video0", Label: "Front Camera"},
		{Path: "/dev/video2", Label: "Back Camera"},
	}
	assert.Equal(t, 1, preferredIndex(devices))

	devices[1].Label = "Integrated Webcam"
	assert.Equal(t, 0, preferredIndex(devices))
	assert.Equal(t, 0, preferredIndex(nil))
}
