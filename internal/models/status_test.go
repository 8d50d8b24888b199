package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "nuevo", StatusNew.Label())
	assert.Equal(t, "en_progreso", StatusInProgress.Label())
	assert.Equal(t, "reasignado", StatusReassigned.Label())
	assert.Equal(t, "finalizado", StatusDone.Label())
	assert.Equal(t, "ARCHIVED", ReportStatus("ARCHIVED").Label())
}

func TestParseStatus(t *testing.T) {
	cases := map[string]ReportStatus{
		"NEW":         StatusNew,
		"in_progress": StatusInProgress,
		"en_progreso": StatusInProgress,
		" reasignado": StatusReassigned,
		"Finalizado":  StatusDone,
		"DONE":        StatusDone,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseStatus("closed")
	assert.Error(t, err)
}

func TestMaxMediaOrder(t *testing.T) {
	r := &Report{}
	assert.Equal(t, 0, r.MaxMediaOrder())

	r.Media = []ReportMedia{{Order: 2}, {Order: 5}, {Order: 1}}
	assert.Equal(t, 5, r.MaxMediaOrder())
}
