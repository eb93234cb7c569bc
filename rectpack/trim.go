package rectpack

import (
	"image"

	"github.com/disintegration/imaging"
)

// bytesPerPixel 是 NRGBA 像素的字节数，alpha 位于第 4 个字节。
const bytesPerPixel = 4

// OpaqueBounds 检测 img 在区域 r 内的透明边缘，返回包含所有 alpha > threshold
// 像素的最小矩形。区域内没有此类像素时 ok 为 false，不会返回零尺寸的非空矩形。
//
// 扫描顺序：先自上而下找到第一行不透明像素(top)，再在 top 以下的行中自左向右
// 找 left、自右向左找 right，最后只在 [left, right) 列中自下而上找 bottom。
func OpaqueBounds(img *image.NRGBA, r image.Rectangle, threshold uint8) (bounds image.Rectangle, ok bool) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return image.Rectangle{}, false
	}
	opaque := func(x, y int) bool {
		return img.Pix[img.PixOffset(x, y)+3] > threshold
	}

	top := -1
	for y := r.Min.Y; y < r.Max.Y && top < 0; y++ {
		i := img.PixOffset(r.Min.X, y) + 3
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.Pix[i] > threshold {
				top = y
				break
			}
			i += bytesPerPixel
		}
	}
	if top < 0 {
		return image.Rectangle{}, false
	}

	left := r.Min.X
scanLeft:
	for x := r.Min.X; x < r.Max.X; x++ {
		for y := top; y < r.Max.Y; y++ {
			if opaque(x, y) {
				left = x
				break scanLeft
			}
		}
	}

	right := r.Max.X
scanRight:
	for x := r.Max.X - 1; x >= left; x-- {
		for y := top; y < r.Max.Y; y++ {
			if opaque(x, y) {
				right = x + 1
				break scanRight
			}
		}
	}

	bottom := r.Max.Y
	for y := r.Max.Y - 1; y >= top; y-- {
		i := img.PixOffset(left, y) + 3
		found := false
		for x := left; x < right; x++ {
			if img.Pix[i] > threshold {
				found = true
				break
			}
			i += bytesPerPixel
		}
		if found {
			bottom = y + 1
			break
		}
	}

	return image.Rect(left, top, right, bottom), true
}

// toNRGBA 返回 img 的 NRGBA 表示以及换算到该表示坐标系中的区域 r。
// 已经是 *image.NRGBA 的输入不会被复制。
func toNRGBA(img image.Image, r image.Rectangle) (*image.NRGBA, image.Rectangle) {
	if src, ok := img.(*image.NRGBA); ok {
		return src, r
	}
	// imaging.Clone 生成的图像原点总是 (0, 0)
	return imaging.Clone(img), r.Sub(img.Bounds().Min)
}
