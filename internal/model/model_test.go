package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTaskType(t *testing.T) {
	tests := []struct {
		in    string
		want  TaskType
		valid bool
	}{
		{"strategy", TaskStrategy, true},
		{"copy", TaskCopy, true},
		{"data-insight", TaskDataInsight, true},
		{"roadmap", TaskRoadmap, true},
		{"api-query", TaskAPIQuery, true},
		{"audit", TaskAudit, true},
		{"campaign", TaskCampaign, true},
		{"general", TaskGeneral, true},
		{"", "", false},
		{"Strategy", "", false},
		{"seo", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTaskType(tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
