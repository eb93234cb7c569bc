package rectpack

import (
	"errors"
	"fmt"
)

var (
	// ErrOversized 表示某个条目加上出血边距后超过了最大页面尺寸。
	ErrOversized = errors.New("rectpack: entry does not fit in maximum page size")

	// ErrInvalidConfig 表示打包器配置无效(最大尺寸 <= 0，或间距/边距为负)。
	ErrInvalidConfig = errors.New("rectpack: invalid packer configuration")
)

// OversizedError 描述导致 Pack 失败的超大条目。
type OversizedError struct {
	Index   int    // 条目在 Entries() 中的位置
	ID      uint64 // 调用方提供的标识符
	Size    Size   // 裁剪后的尺寸
	Padding int
	MaxSize int
}

func (e *OversizedError) Error() string {
	return fmt.Sprintf("rectpack: entry #%d (id %d) of size %s with padding %d exceeds max page size %d",
		e.Index, e.ID, e.Size.String(), e.Padding, e.MaxSize)
}

func (e *OversizedError) Unwrap() error {
	return ErrOversized
}
