package rectpack

// Entry 是一个已添加图像的打包记录。
//
// Frame 描述原始(未裁剪)图像：X/Y 为负的裁剪偏移，Width/Height 为原始尺寸。
// Packed 的宽高为裁剪后的尺寸，X/Y 为 Pack 之后在所属页面中的位置。
// 完全透明的图像 Empty 为 true，Packed 永远为零，Page 为 -1。
type Entry struct {
	ID     uint64 `json:"id"`
	Empty  bool   `json:"empty"`
	Frame  Rect   `json:"frame"`
	Packed Rect   `json:"packed"`
	Page   int    `json:"page"`

	offset int64
}

// Trimmed 报告图像在打包前是否被裁剪过。
func (e *Entry) Trimmed() bool {
	return !e.Empty && !e.Packed.Size.Eq(e.Frame.Size)
}

// footprint 返回条目在装箱树中占用的尺寸：裁剪尺寸加两侧出血边距和一个间距。
func (e *Entry) footprint(padding, spacing int) Size {
	return Size{
		Width:  e.Packed.Width + 2*padding + spacing,
		Height: e.Packed.Height + 2*padding + spacing,
	}
}
