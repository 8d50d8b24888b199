package models

import (
	"fmt"
	"strings"
)

// ReportStatus is the workflow state of a citizen report.
type ReportStatus string

const (
	StatusNew        ReportStatus = "NEW"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusReassigned ReportStatus = "REASSIGNED"
	StatusDone       ReportStatus = "DONE"
)

var statusLabels = map[ReportStatus]string{
	StatusNew:        "nuevo",
	StatusInProgress: "en_progreso",
	StatusReassigned: "reasignado",
	StatusDone:       "finalizado",
}

// AllStatuses lists every status in workflow order.
func AllStatuses() []ReportStatus {
	return []ReportStatus{StatusNew, StatusInProgress, StatusReassigned, StatusDone}
}

// Label returns the user-facing name of the status. Unknown values are
// returned unchanged.
func (s ReportStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s ReportStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus accepts either the status identity ("IN_PROGRESS") or its
// display label ("en_progreso"), case-insensitively.
func ParseStatus(raw string) (ReportStatus, error) {
	v := strings.TrimSpace(raw)
	for s, label := range statusLabels {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, label) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown report status %q", raw)
}
