package tui

import (
	"testing"

	"github.com/pb33f/flowscope/motor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFlowRow(t *testing.T) {
	flow := motor.DefaultRegistry().Resolve(7, testEntry("POST", "https://api.example.com/v1/orders?page=2", 201, "application/json", "{}"), motor.FlowDeps{})

	row := formatFlowRow(flow, false, false, 40)
	require.Len(t, row, len(flowColumns(120)))
	assert.Equal(t, "#7", row[0])
	assert.Equal(t, "POST", row[1])
	assert.Equal(t, "/v1/orders?page=2", row[2])
	assert.Equal(t, "201 OK", row[3])
	assert.Equal(t, motor.CategoryJSON, row[4])
	assert.Equal(t, "42ms", row[5])

	row = formatFlowRow(flow, true, true, 40)
	assert.Equal(t, highlightMarker+" #7*", row[0])
}

func TestBuildFlowRows(t *testing.T) {
	flows := testFlows(3)
	regions := NewRegions()
	regions.SetRowHighlight(1, true)

	rows := buildFlowRows(flows, regions, func(id int) bool { return id == 2 }, 120)
	require.Len(t, rows, 3)
	assert.Equal(t, "#0", rows[0][0])
	assert.Equal(t, highlightMarker+" #1", rows[1][0])
	assert.Equal(t, "#2*", rows[2][0])
}

func TestFormatURL(t *testing.T) {
	assert.Equal(t, "/", formatURL("", 40))
	assert.Equal(t, "/", formatURL("https://example.com", 40))
	assert.Equal(t, "/a/b", formatURL("https://example.com/a/b", 40))
	assert.Equal(t, "/abcdefg...", formatURL("https://example.com/abcdefghijklmnop", 11))
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "---", formatStatus(0, ""))
	assert.Equal(t, "200 OK", formatStatus(200, "OK"))
	assert.Equal(t, "503", formatStatus(503, "Service Unavailable"))
	assert.Equal(t, "404", formatStatus(404, ""))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "---", formatDuration(0))
	assert.Equal(t, "500μs", formatDuration(0.5))
	assert.Equal(t, "150ms", formatDuration(150))
	assert.Equal(t, "2.5s", formatDuration(2500))
	assert.Equal(t, "1m30s", formatDuration(90000))
}

func TestFormatMethod(t *testing.T) {
	assert.Equal(t, "GET", formatMethod(""))
	assert.Equal(t, "OPTIONS", formatMethod("OPTIONS"))
	assert.Equal(t, "PROPFIN", formatMethod("PROPFIND"))
}

func TestURLColumnWidth(t *testing.T) {
	assert.Equal(t, minURLColumnWidth, urlColumnWidth(0))
	assert.Equal(t, maxURLColumnWidth, urlColumnWidth(1000))
	assert.Equal(t, 80-idColumnWidth-methodColumnWidth-statusColumnWidth-categoryColumnWidth-durationColumnWidth-borderPadding, urlColumnWidth(80))
}
