package model

// TaskType is the closed category label used to select a response template.
type TaskType string

const (
	TaskStrategy    TaskType = "strategy"
	TaskCopy        TaskType = "copy"
	TaskDataInsight TaskType = "data-insight"
	TaskRoadmap     TaskType = "roadmap"
	TaskAPIQuery    TaskType = "api-query"
	TaskAudit       TaskType = "audit"
	TaskCampaign    TaskType = "campaign"
	TaskGeneral     TaskType = "general"
)

// AllTaskTypes lists every valid task type, in declaration order.
var AllTaskTypes = []TaskType{
	TaskStrategy, TaskCopy, TaskDataInsight, TaskRoadmap,
	TaskAPIQuery, TaskAudit, TaskCampaign, TaskGeneral,
}

// ParseTaskType validates a caller-supplied task type string.
// The empty string is not a valid task type.
func ParseTaskType(s string) (TaskType, bool) {
	for _, t := range AllTaskTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}
