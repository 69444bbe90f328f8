package hash

import (
	"hash/fnv"
	"strconv"
)

// Hash 根据接收人ID和业务key计算稳定的64位哈希值
// 相同输入永远得到相同输出，与进程无关
func Hash(recipientID int64, key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatInt(recipientID, 10)))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
