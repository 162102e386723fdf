package mq

import "github.com/cespare/xxhash/v2"

// PartitionOf 按 key 选择分区，同一个 key 永远落在同一分区
func PartitionOf(key []byte, partitions int) int32 {
	if partitions <= 1 || len(key) == 0 {
		return 0
	}
	return int32(xxhash.Sum64(key) % uint64(partitions))
}
