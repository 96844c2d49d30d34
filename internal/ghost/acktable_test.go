package ghost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAckTableRecordAndMarkAcked(t *testing.T) {
	tbl := newAckTable()
	tbl.record("msg-1", time.Now())

	require.True(t, tbl.markAcked("msg-1"))
	require.False(t, tbl.markAcked("msg-1"), "second ack must not re-count")
	require.False(t, tbl.markAcked("unknown"))
}

func TestAckTablePrunesOnlyExpiredEntries(t *testing.T) {
	tbl := newAckTable()
	base := time.Now()
	tbl.record("old-unacked", base.Add(-10*time.Minute))
	tbl.record("old-acked", base.Add(-10*time.Minute))
	tbl.markAcked("old-acked")
	tbl.record("fresh", base)

	expired := tbl.prune(base)
	require.Equal(t, 1, expired, "only the unacked expired entry counts")
	require.Len(t, tbl, 1)
	_, stillThere := tbl["fresh"]
	require.True(t, stillThere)
}

func TestInboxTopicFormat(t *testing.T) {
	require.Equal(t, "/deaddrop/inbox/abc123", inboxTopic("abc123"))
}
