package cache

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrKeyNotFound = errors.New("key not found")

// SettingsKey 用户通知设置的缓存键
func SettingsKey(userID int64) string {
	return fmt.Sprintf("notification:settings:%d", userID)
}
