package idgen

import (
	"sync/atomic"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/pkg/hash"
)

const (
	// 位数分配常量
	timestampBits = 41 // 时间戳位数
	hashBits      = 10 // hash值位数
	sequenceBits  = 12 // 序列号位数

	// 位移常量
	hashShift      = sequenceBits
	timestampShift = hashBits + sequenceBits

	// 掩码常量
	sequenceMask  = (1 << sequenceBits) - 1
	hashMask      = (1 << hashBits) - 1
	timestampMask = (1 << timestampBits) - 1

	hashMod = 1 << hashBits

	// 基准时间 - 2024年1月1日
	epochMillis = int64(1704067200000) // 2024-01-01 00:00:00 UTC in milliseconds
)

// Generator 是ID生成器结构
// 雪花算法变种：时间戳 + 接收人hash + 序列号，
// 同一接收人的站内信ID聚集，方便按接收人分页
type Generator struct {
	sequence int64 // 序列号计数器，使用原子操作访问
}

// NewGenerator 创建一个新的ID生成器
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateID 根据雪花算法变种生成ID
// recipientID: 接收人ID
// key: 业务关键字，通常是事件类型加来源标识
func (g *Generator) GenerateID(recipientID int64, key string) int64 {
	// 获取当前时间戳（毫秒）
	timestamp := time.Now().UnixMilli() - epochMillis

	// 计算hash值并取余
	hashValue := hash.Hash(recipientID, key) % hashMod
	if hashValue < 0 {
		hashValue += hashMod // 处理负数hash值
	}

	// 使用原子操作安全地递增序列号
	sequence := atomic.AddInt64(&g.sequence, 1) - 1 // 减1是因为AddInt64返回递增后的值

	// 确保序列号在允许范围内循环
	sequence = sequence & sequenceMask

	// 组装最终ID
	return (timestamp&timestampMask)<<timestampShift | // 时间戳部分
		(hashValue&hashMask)<<hashShift | // hash值部分
		(sequence & sequenceMask) // 序列号部分
}

// ExtractTimestamp 从ID中提取时间戳
func ExtractTimestamp(id int64) time.Time {
	timestamp := (id >> timestampShift) & timestampMask
	return time.Unix(0, (timestamp+epochMillis)*int64(time.Millisecond))
}

// ExtractHashValue 从ID中提取hash值
func ExtractHashValue(id int64) int64 {
	return (id >> hashShift) & hashMask
}

// ExtractSequence 从ID中提取序列号部分
func ExtractSequence(id int64) int64 {
	return id & sequenceMask
}
