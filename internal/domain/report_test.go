package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Path:       "/abs/path",
		DryRun:     true,
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Page: "b.html", Status: StatusPartial},
			{Page: "", Status: StatusFailed}, // config 等合成项
			{Page: "a.html", Status: StatusProcessed},
			{Page: "c.html", Status: StatusFailed},
		},
	}

	r.Finalize()

	pages := []string{r.Items[0].Page, r.Items[1].Page, r.Items[2].Page, r.Items[3].Page}
	assert.Equal(t, []string{"a.html", "b.html", "c.html", ""}, pages, "page==\"\" 必须排在最后")
	assert.Equal(t, ReportSummary{Processed: 1, Partial: 1, Failed: 2}, r.Summary)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"started_at":"2026-02-09T02:00:00Z"`, "started_at 必须是 UTC RFC3339")
	assert.Contains(t, string(b), `"diagnostics":[]`, "nil 切片应输出为 []")
	assert.Nil(t, r.Items[0].Diagnostics, "MarshalJSON 不应修改原始 items")
}
