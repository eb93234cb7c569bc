package rectpack

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// newPage 分配一个透明的页面位图。开启 powerOfTwo 时宽高分别向上取整到 2 的幂。
func newPage(size Size, powerOfTwo bool) *image.NRGBA {
	if powerOfTwo {
		size.Width = nextPowerOfTwo(size.Width)
		size.Height = nextPowerOfTwo(size.Height)
	}
	return imaging.New(size.Width, size.Height, color.NRGBA{0, 0, 0, 0})
}

// blit 将行主序、无行间隙的 w*h 像素块 src 复制到 dst 的 (x, y) 处。
func blit(dst *image.NRGBA, x, y, w, h int, src []byte) {
	rowLen := w * bytesPerPixel
	for row := 0; row < h; row++ {
		i := dst.PixOffset(x, y+row)
		copy(dst.Pix[i:i+rowLen], src[row*rowLen:(row+1)*rowLen])
	}
}

// composite 将条目的像素块绘制到页面上。padding > 0 时先在上下左右四个方向
// 偏移 padding 绘制同一像素块，把边缘颜色扩展到出血区域；四个角不填充。
func composite(page *image.NRGBA, arena *pixelArena, e *Entry, padding int) {
	r := e.Packed
	src := arena.block(e.offset, r.Width, r.Height)
	if padding > 0 {
		blit(page, r.X-padding, r.Y, r.Width, r.Height, src)
		blit(page, r.X+padding, r.Y, r.Width, r.Height, src)
		blit(page, r.X, r.Y-padding, r.Width, r.Height, src)
		blit(page, r.X, r.Y+padding, r.Width, r.Height, src)
	}
	blit(page, r.X, r.Y, r.Width, r.Height, src)
}
