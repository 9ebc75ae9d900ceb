package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/apexmarketer-ai/apex/internal/model"
)

// ResponseFormat describes the output template for one task type.
type ResponseFormat struct {
	TaskType  model.TaskType
	Format    string
	Structure []string
	Examples  []string
}

// responseFormats maps every task type to its fixed format descriptor.
var responseFormats = map[model.TaskType]ResponseFormat{
	model.TaskStrategy: {
		TaskType: model.TaskStrategy,
		Format:   "Markdown outline → optional PPT link",
		Structure: []string{
			"# Strategy Overview",
			"## Situation Analysis",
			"## Strategic Objectives",
			"## Recommended Actions",
			"## Success Metrics",
			"## Implementation Timeline",
		},
		Examples: []string{
			"Growth strategy for SaaS platform",
			"Market expansion plan",
			"Competitive positioning strategy",
		},
	},
	model.TaskCopy: {
		TaskType: model.TaskCopy,
		Format:   "Table: Version · Hook · CTA",
		Structure: []string{
			"| Version | Hook | Body | CTA |",
			"|---------|------|------|-----|",
			"| A | [Hook A] | [Body A] | [CTA A] |",
		},
		Examples: []string{
			"LinkedIn ad variations",
			"Email subject line tests",
			"Landing page headline options",
		},
	},
	model.TaskDataInsight: {
		TaskType: model.TaskDataInsight,
		Format:   "Bulleted takeaway + inline chart link",
		Structure: []string{
			"## Key Insights",
			"• Primary finding with data point",
			"• Secondary finding with trend",
			"• Actionable recommendation",
			"## Data Visualization",
			"[Chart/Dashboard Link]",
		},
		Examples: []string{
			"Funnel performance analysis",
			"Campaign ROI breakdown",
			"Customer segment insights",
		},
	},
	model.TaskRoadmap: {
		TaskType: model.TaskRoadmap,
		Format:   "Nested Markdown list",
		Structure: []string{
			"## Q1 Initiatives",
			"- [ ] Major Initiative 1",
			"  - [ ] Sub-task A (Impact: High, Effort: Medium)",
			"  - [ ] Sub-task B (Impact: Medium, Effort: Low)",
			"- [ ] Major Initiative 2",
		},
		Examples: []string{
			"Marketing campaign roadmap",
			"SEO optimization checklist",
			"Growth experiment pipeline",
		},
	},
	model.TaskAPIQuery: {
		TaskType: model.TaskAPIQuery,
		Format:   "5-row preview table, then JSON link",
		Structure: []string{
			"## Data Preview",
			"| Column 1 | Column 2 | Column 3 |",
			"|----------|----------|----------|",
			"| Row 1 data...",
			"## Full Dataset",
			"[JSON Export Link]",
		},
		Examples: []string{
			"CRM pipeline data",
			"Analytics performance metrics",
			"Campaign asset inventory",
		},
	},
	model.TaskAudit: {
		TaskType: model.TaskAudit,
		Format:   "Prioritized findings with impact estimates",
		Structure: []string{
			"## Executive Summary",
			"## High Impact Issues (Fix First)",
			"• Issue 1 - Estimated traffic lift: +X%",
			"## Medium Impact Issues",
			"## Low Impact Issues",
			"## Implementation Priority",
		},
		Examples: []string{
			"SEO technical audit",
			"Conversion rate optimization audit",
			"Marketing automation review",
		},
	},
	model.TaskCampaign: {
		TaskType: model.TaskCampaign,
		Format:   "Campaign brief with creative specs",
		Structure: []string{
			"## Campaign Overview",
			"## Target Audience",
			"## Creative Requirements",
			"## Budget Allocation",
			"## Success Metrics",
			"## Timeline & Deliverables",
		},
		Examples: []string{
			"Product launch campaign",
			"Lead generation campaign",
			"Brand awareness initiative",
		},
	},
	model.TaskGeneral: {
		TaskType: model.TaskGeneral,
		Format:   "Structured analysis with recommendations",
		Structure: []string{
			"## Analysis",
			"## Recommendations",
			"## Next Steps",
			"## Resources Required",
		},
		Examples: []string{
			"Marketing stack evaluation",
			"Team structure optimization",
			"Budget reallocation analysis",
		},
	},
}

// FormatFor returns the format descriptor for a task type. Unknown task
// types fall back to the general template, so the lookup is total.
func FormatFor(taskType model.TaskType) ResponseFormat {
	if f, ok := responseFormats[taskType]; ok {
		return f
	}
	return responseFormats[model.TaskGeneral]
}

// contains reports whether the lower-cased message includes any of the terms.
func contains(lower string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// DetectTaskType classifies a raw user message into a task type using
// ordered keyword tests; the first matching rule wins and classification is
// single-label. Rule order is the tie-break for messages matching several
// categories. Never fails: unmatched input falls through to general.
func DetectTaskType(message string) model.TaskType {
	lower := strings.ToLower(message)

	if contains(lower, "strategy", "plan", "roadmap") {
		if contains(lower, "roadmap", "checklist", "timeline") {
			return model.TaskRoadmap
		}
		return model.TaskStrategy
	}

	if contains(lower, "copy", "write", "ad", "email", "variation") {
		return model.TaskCopy
	}

	if contains(lower, "data", "analytics", "metrics", "pull", "funnel", "performance") {
		if contains(lower, "pull", "export", "api") {
			return model.TaskAPIQuery
		}
		return model.TaskDataInsight
	}

	if contains(lower, "audit", "review", "analyze", "quick wins", "issues") {
		return model.TaskAudit
	}

	if contains(lower, "campaign", "launch", "creative", "budget split") {
		return model.TaskCampaign
	}

	return model.TaskGeneral
}

// FormatMetadata is the provenance appended to a formatted response.
type FormatMetadata struct {
	GeneratedAt time.Time
	Source      string
	Model       string
}

// FormatResponse wraps sanitized text in the task-specific template: a
// reasoning annotation naming the chosen format, the text itself, and a
// metadata footer. No branch depends on the content of text.
func FormatResponse(text string, taskType model.TaskType, meta FormatMetadata) string {
	format := FormatFor(taskType)

	var b strings.Builder
	fmt.Fprintf(&b, "// thought: Formatting response as %s\n\n", format.Format)
	b.WriteString(text)

	ts := meta.GeneratedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "*Generated: %s*\n", ts.UTC().Format(time.RFC3339))
	if meta.Source != "" {
		fmt.Fprintf(&b, "*Source: %s*\n", meta.Source)
	}
	if meta.Model != "" {
		fmt.Fprintf(&b, "*Model: %s*\n", meta.Model)
	}

	return b.String()
}
