package rectpack

import "image"

// pixelArena 是只追加的字节缓冲区，保存每个裁剪后图像像素的私有副本。
// 返回的偏移量在 reset 之前始终有效；缓冲区扩容不会使其失效。
type pixelArena struct {
	buf []byte
}

// appendBlock 按行复制 src 中区域 r 的像素(行与行之间无间隙)，返回块的起始偏移。
func (a *pixelArena) appendBlock(src *image.NRGBA, r image.Rectangle) int64 {
	off := int64(len(a.buf))
	rowLen := r.Dx() * bytesPerPixel
	a.buf = growBytes(a.buf, rowLen*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := src.PixOffset(r.Min.X, y)
		a.buf = append(a.buf, src.Pix[i:i+rowLen]...)
	}
	return off
}

// block 返回偏移 off 处 w*h 像素块的只读视图。
func (a *pixelArena) block(off int64, w, h int) []byte {
	return a.buf[off : off+int64(w*h*bytesPerPixel)]
}

// len 返回已使用的字节数。
func (a *pixelArena) len() int {
	return len(a.buf)
}

func (a *pixelArena) reset() {
	a.buf = nil
}

func growBytes(s []byte, n int) []byte {
	if n -= cap(s) - len(s); n > 0 {
		s = append(s[:cap(s)], make([]byte, n)...)[:len(s)]
	}
	return s
}
