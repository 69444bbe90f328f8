package hash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 用真实的去重键形态（事件类型:来源类型:来源ID）做碰撞检查
func TestHashNoCollision(t *testing.T) {
	types := []struct {
		event  string
		source string
	}{
		{"TASK_ASSIGNED", "task"},
		{"TASK_COMPLETED", "task"},
		{"APPROVAL_PENDING", "approval"},
		{"APPROVAL_RESULT", "approval"},
		{"COST_ALERT", "project"},
		{"ECN_SUBMITTED", "ecn"},
		{"DEADLINE_REMINDER", "task"},
	}

	seen := make(map[int64]string)
	for recipientID := int64(1); recipientID <= 50; recipientID++ {
		for _, tp := range types {
			for sourceID := int64(1); sourceID <= 20; sourceID++ {
				key := fmt.Sprintf("%s:%s:%d", tp.event, tp.source, sourceID)
				h := Hash(recipientID, key)
				prev, ok := seen[h]
				assert.False(t, ok, "哈希冲突: %s 与 recipientID=%d key=%s", prev, recipientID, key)
				seen[h] = fmt.Sprintf("recipientID=%d key=%s", recipientID, key)
			}
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	const recipientID = int64(42)
	const key = "TASK_ASSIGNED:task:100"

	first := Hash(recipientID, key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Hash(recipientID, key))
	}
}

// 接收人不同时，同一业务键必须得到不同指纹
func TestHashRecipientSensitive(t *testing.T) {
	const key = "COST_ALERT:project:7"
	assert.NotEqual(t, Hash(1, key), Hash(2, key))
}
