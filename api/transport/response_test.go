package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/domain"
)

func TestNewPage(t *testing.T) {
	page := NewPage(20, 40, 20)
	require.NotNil(t, page.NextOffset)
	assert.Equal(t, 60, *page.NextOffset)

	assert.Nil(t, NewPage(20, 40, 7).NextOffset)
	assert.Nil(t, NewPage(0, 0, 0).NextOffset)
}

func TestEnvelopeString(t *testing.T) {
	assert.JSONEq(t,
		`{"status":"error","code":"FORBIDDEN","message":"missing capability edit_all_tasks"}`,
		Failure(domain.ErrCodeForbidden, "missing capability edit_all_tasks").String())

	assert.JSONEq(t,
		`{"status":"success","data":["t1"],"page":{"limit":1,"offset":0,"count":1,"next_offset":1}}`,
		Paged([]string{"t1"}, NewPage(1, 0, 1)).String())

	assert.JSONEq(t,
		`{"status":"error","code":"DEGRADED","message":"critical dependency unavailable","data":{"pending_writes":4}}`,
		Degraded(map[string]int{"pending_writes": 4}).String())
}
