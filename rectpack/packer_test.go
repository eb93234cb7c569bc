package rectpack

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage 创建一个填充单色的 w*h 图像。
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// randomColor (surprise!) returns a random opaque color.
func randomColor(rng *rand.Rand) color.NRGBA {
	// Offset to use a minimum value so it is never pure black.
	return color.NRGBA{
		R: uint8(rng.Intn(240)) + 15,
		G: uint8(rng.Intn(240)) + 15,
		B: uint8(rng.Intn(240)) + 15,
		A: 255,
	}
}

func newTestPacker(t *testing.T, maxSize, padding, spacing int, pot bool) *Packer {
	t.Helper()
	p, err := NewPacker(maxSize)
	require.NoError(t, err)
	p.Padding = padding
	p.Spacing = spacing
	p.PowerOfTwo = pot
	return p
}

func TestNewPacker(t *testing.T) {
	_, err := NewPacker(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	p := NewDefaultPacker()
	assert.Equal(t, DefaultSize, p.MaxSize)
	assert.False(t, p.Dirty())
	assert.NoError(t, p.Pack())
	assert.Empty(t, p.Pages())
}

func TestPackSingleOpaqueWithPadding(t *testing.T) {
	p := newTestPacker(t, 8192, 1, 0, false)
	p.Add(1, solidImage(10, 10, color.NRGBA{255, 0, 0, 255}))
	require.NoError(t, p.Pack())

	require.Len(t, p.Pages(), 1)
	assert.Equal(t, image.Rect(0, 0, 12, 12), p.Pages()[0].Bounds())

	e := p.Entries()[0]
	assert.Equal(t, NewRect(1, 1, 10, 10), e.Packed)
	assert.Equal(t, NewRect(0, 0, 10, 10), e.Frame)
	assert.Equal(t, 0, e.Page)
	assert.False(t, e.Trimmed())
}

func TestPackFullyTransparent(t *testing.T) {
	p := newTestPacker(t, 8192, 0, 0, false)
	p.Add(1, image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	require.NoError(t, p.Pack())

	assert.Empty(t, p.Pages())
	e := p.Entries()[0]
	assert.True(t, e.Empty)
	assert.Equal(t, Rect{}, e.Packed)
	assert.Equal(t, NewRect(0, 0, 10, 10), e.Frame)
	assert.Zero(t, p.arena.len())
}

func TestPackOversized(t *testing.T) {
	p := newTestPacker(t, 8192, 0, 0, false)
	p.Add(7, solidImage(9000, 9000, color.NRGBA{0, 0, 255, 255}))
	err := p.Pack()
	require.ErrorIs(t, err, ErrOversized)

	var oversized *OversizedError
	require.True(t, errors.As(err, &oversized))
	assert.Equal(t, uint64(7), oversized.ID)
	assert.Equal(t, 0, oversized.Index)
	assert.Empty(t, p.Pages())
	assert.True(t, p.Dirty())
}

func TestPackOversizedByPadding(t *testing.T) {
	p := newTestPacker(t, 64, 1, 0, false)
	p.Add(1, solidImage(63, 10, color.NRGBA{0, 0, 255, 255}))
	assert.ErrorIs(t, p.Pack(), ErrOversized)

	p.Padding = 0
	assert.NoError(t, p.Pack())
}

func TestPackOversizedKeepsPreviousPages(t *testing.T) {
	p := newTestPacker(t, 128, 0, 0, false)
	p.Add(1, solidImage(20, 20, color.NRGBA{0, 255, 0, 255}))
	require.NoError(t, p.Pack())
	before := p.Pages()[0]
	packed := p.Entries()[0].Packed

	p.Add(2, solidImage(200, 10, color.NRGBA{0, 255, 0, 255}))
	require.ErrorIs(t, p.Pack(), ErrOversized)
	require.Len(t, p.Pages(), 1)
	assert.Same(t, before, p.Pages()[0])
	assert.Equal(t, packed, p.Entries()[0].Packed)
}

func TestPackInvalidConfig(t *testing.T) {
	p := newTestPacker(t, 128, -1, 0, false)
	p.Add(1, solidImage(4, 4, color.NRGBA{0, 255, 0, 255}))
	assert.ErrorIs(t, p.Pack(), ErrInvalidConfig)

	p.Padding = 0
	p.MaxSize = 0
	assert.ErrorIs(t, p.Pack(), ErrInvalidConfig)
}

func TestPackTwoPowerOfTwo(t *testing.T) {
	p := newTestPacker(t, 8192, 0, 0, true)
	p.Add(1, solidImage(100, 100, color.NRGBA{255, 0, 0, 255}))
	p.Add(2, solidImage(100, 100, color.NRGBA{0, 255, 0, 255}))
	require.NoError(t, p.Pack())

	require.Len(t, p.Pages(), 1)
	a, b := p.Entries()[0], p.Entries()[1]
	assert.Equal(t, 0, a.Page)
	assert.Equal(t, 0, b.Page)
	assert.False(t, a.Packed.Intersects(b.Packed))

	bounds := p.Pages()[0].Bounds()
	assert.Equal(t, 256, bounds.Dx())
	assert.Equal(t, 128, bounds.Dy())
}

func TestPackTrimOffsets(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	draw.Draw(img, image.Rect(5, 3, 17, 20), &image.Uniform{color.NRGBA{9, 9, 9, 255}}, image.Point{}, draw.Src)

	p := newTestPacker(t, 1024, 0, 0, false)
	p.Add(1, img)
	require.NoError(t, p.Pack())

	e := p.Entries()[0]
	assert.Equal(t, 12, e.Packed.Width)
	assert.Equal(t, 17, e.Packed.Height)
	assert.Equal(t, NewRect(-5, -3, 32, 24), e.Frame)
	assert.True(t, e.Trimmed())

	sub := p.Pages()[0].SubImage(e.Packed.Image()).(*image.NRGBA)
	for y := sub.Rect.Min.Y; y < sub.Rect.Max.Y; y++ {
		for x := sub.Rect.Min.X; x < sub.Rect.Max.X; x++ {
			require.Equal(t, color.NRGBA{9, 9, 9, 255}, sub.NRGBAAt(x, y))
		}
	}
}

func TestAddRectSourceRegion(t *testing.T) {
	img := solidImage(40, 40, color.NRGBA{1, 2, 3, 255})
	// 在区域内挖出透明边框
	draw.Draw(img, image.Rect(10, 10, 30, 12), image.Transparent, image.Point{}, draw.Src)

	p := newTestPacker(t, 1024, 0, 0, false)
	p.AddRect(1, img, image.Rect(10, 10, 30, 30))
	e := p.Entries()[0]
	assert.Equal(t, NewRect(0, -2, 20, 20), e.Frame)
	assert.Equal(t, Size{Width: 20, Height: 18}, e.Packed.Size)

	p.AddRect(2, img, image.Rect(100, 100, 110, 110))
	assert.True(t, p.Entries()[1].Empty)
}

func TestAddNonNRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(50, 50, 60, 60))
	draw.Draw(img, image.Rect(52, 53, 55, 58), &image.Uniform{color.RGBA{200, 0, 0, 255}}, image.Point{}, draw.Src)

	p := newTestPacker(t, 64, 0, 0, false)
	p.Add(1, img)
	require.NoError(t, p.Pack())

	e := p.Entries()[0]
	assert.Equal(t, NewRect(-2, -3, 10, 10), e.Frame)
	assert.Equal(t, NewRect(0, 0, 3, 5), e.Packed)
	assert.Equal(t, color.NRGBA{200, 0, 0, 255}, p.Pages()[0].NRGBAAt(1, 1))
}

func TestPackIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := newTestPacker(t, 256, 2, 1, true)
	for i := 0; i < 40; i++ {
		p.Add(uint64(i), solidImage(rng.Intn(40)+1, rng.Intn(40)+1, randomColor(rng)))
	}
	require.NoError(t, p.Pack())
	pages := p.Pages()
	snapshot := make([][]byte, len(pages))
	for i, page := range pages {
		snapshot[i] = append([]byte(nil), page.Pix...)
	}
	entries := append([]Entry(nil), p.Entries()...)

	require.NoError(t, p.Pack())
	assert.Equal(t, entries, p.Entries())
	require.Len(t, p.Pages(), len(snapshot))
	for i, page := range p.Pages() {
		assert.Equal(t, snapshot[i], page.Pix)
	}

	// 强制重新打包也必须得到相同的结果
	p.dirty = true
	require.NoError(t, p.Pack())
	assert.Equal(t, entries, p.Entries())
	for i, page := range p.Pages() {
		assert.Equal(t, snapshot[i], page.Pix)
	}
}

func TestPackDuplicateIDs(t *testing.T) {
	p := newTestPacker(t, 256, 0, 0, false)
	p.Add(5, solidImage(10, 20, color.NRGBA{255, 0, 0, 255}))
	p.Add(5, solidImage(30, 5, color.NRGBA{0, 0, 255, 255}))
	require.NoError(t, p.Pack())

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Size{Width: 10, Height: 20}, entries[0].Packed.Size)
	assert.Equal(t, Size{Width: 30, Height: 5}, entries[1].Packed.Size)
	assert.False(t, entries[0].Packed.Intersects(entries[1].Packed))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, p.Pages()[0].NRGBAAt(entries[0].Packed.X, entries[0].Packed.Y))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, p.Pages()[0].NRGBAAt(entries[1].Packed.X, entries[1].Packed.Y))
}

func TestPackStableOrder(t *testing.T) {
	p := newTestPacker(t, 256, 0, 0, false)
	for i := 0; i < 3; i++ {
		p.Add(uint64(i), solidImage(8, 8, color.NRGBA{uint8(i), 0, 0, 255}))
	}
	require.NoError(t, p.Pack())
	// 相同面积的条目保持插入顺序，第一个作为种子放在原点
	assert.Equal(t, Point{}, p.Entries()[0].Packed.Point)
}

func TestPackMultiplePages(t *testing.T) {
	p := newTestPacker(t, 64, 0, 0, false)
	for i := 0; i < 5; i++ {
		p.Add(uint64(i), solidImage(40, 40, color.NRGBA{0, uint8(i * 40), 0, 255}))
	}
	require.NoError(t, p.Pack())
	require.Len(t, p.Pages(), 5)
	for i, e := range p.Entries() {
		assert.Equal(t, i, e.Page)
		assert.Equal(t, Point{}, e.Packed.Point)
	}
	for _, page := range p.Pages() {
		assert.LessOrEqual(t, page.Bounds().Dx(), 64)
		assert.LessOrEqual(t, page.Bounds().Dy(), 64)
	}
}

func TestPackBleedEdgesOnly(t *testing.T) {
	c := color.NRGBA{10, 20, 30, 255}
	p := newTestPacker(t, 64, 2, 0, false)
	p.Add(1, solidImage(4, 4, c))
	require.NoError(t, p.Pack())

	page := p.Pages()[0]
	require.Equal(t, image.Rect(0, 0, 8, 8), page.Bounds())
	// 四条边被填充
	assert.Equal(t, c, page.NRGBAAt(0, 3))
	assert.Equal(t, c, page.NRGBAAt(7, 3))
	assert.Equal(t, c, page.NRGBAAt(3, 0))
	assert.Equal(t, c, page.NRGBAAt(3, 7))
	// 四个角保持透明
	for _, pt := range []image.Point{{0, 0}, {7, 0}, {0, 7}, {7, 7}, {1, 1}} {
		assert.Equal(t, color.NRGBA{}, page.NRGBAAt(pt.X, pt.Y), "corner %v", pt)
	}
}

func TestPackEmptyEntriesContributeNothing(t *testing.T) {
	p := newTestPacker(t, 256, 0, 0, false)
	p.Add(1, image.NewNRGBA(image.Rect(0, 0, 50, 50)))
	p.Add(2, solidImage(10, 10, color.NRGBA{1, 1, 1, 255}))
	require.NoError(t, p.Pack())

	require.Len(t, p.Pages(), 1)
	assert.Equal(t, image.Rect(0, 0, 10, 10), p.Pages()[0].Bounds())
	assert.Equal(t, -1, p.Entries()[0].Page)
	assert.Equal(t, Rect{}, p.Entries()[0].Packed)
	assert.InDelta(t, 1.0, p.Used(0), 1e-9)
}

func TestClear(t *testing.T) {
	p := newTestPacker(t, 256, 0, 0, false)
	p.Add(1, solidImage(10, 10, color.NRGBA{1, 1, 1, 255}))
	require.NoError(t, p.Pack())
	p.Add(2, solidImage(10, 10, color.NRGBA{1, 1, 1, 255}))
	p.Clear()

	assert.False(t, p.Dirty())
	assert.Empty(t, p.Entries())
	assert.Empty(t, p.Pages())
	assert.Zero(t, p.arena.len())
	require.NoError(t, p.Pack())
	assert.Empty(t, p.Pages())
}

func TestSorterReverse(t *testing.T) {
	p := newTestPacker(t, 256, 0, 0, false)
	p.Sorter(SortArea, true)
	p.Add(1, solidImage(30, 30, color.NRGBA{1, 1, 1, 255}))
	p.Add(2, solidImage(5, 5, color.NRGBA{1, 1, 1, 255}))
	require.NoError(t, p.Pack())
	// 反向排序时最小的条目作为种子
	assert.Equal(t, Point{}, p.Entries()[1].Packed.Point)
}

func TestAlphaThreshold(t *testing.T) {
	img := solidImage(10, 10, color.NRGBA{0, 0, 0, 8})
	draw.Draw(img, image.Rect(2, 2, 4, 4), &image.Uniform{color.NRGBA{0, 0, 0, 255}}, image.Point{}, draw.Src)

	p := newTestPacker(t, 256, 0, 0, false)
	p.Add(1, img)
	p.AlphaThreshold = 8
	p.Add(2, img)
	assert.Equal(t, Size{Width: 10, Height: 10}, p.Entries()[0].Packed.Size)
	assert.Equal(t, Size{Width: 2, Height: 2}, p.Entries()[1].Packed.Size)
}

// TestRandom 随机生成大量精灵，验证同页条目不重叠、都在页面内，
// 且页面像素与源像素一致。
func TestRandom(t *testing.T) {
	const count = 512
	rng := rand.New(rand.NewSource(42))

	for _, tc := range []struct {
		name             string
		padding, spacing int
		pot              bool
	}{
		{"tight", 0, 0, false},
		{"padded", 2, 0, false},
		{"spaced", 0, 3, true},
		{"padded_spaced", 1, 2, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPacker(t, 512, tc.padding, tc.spacing, tc.pot)
			colors := make([]color.NRGBA, count)
			for i := 0; i < count; i++ {
				colors[i] = randomColor(rng)
				p.Add(uint64(i), solidImage(rng.Intn(64)+1, rng.Intn(64)+1, colors[i]))
			}
			require.NoError(t, p.Pack())
			if len(p.Pages()) > 10 {
				t.Fatal("Too many pages required; check for very large sizes")
			}

			entries := p.Entries()
			for i := range entries {
				a := entries[i]
				bounds := p.Pages()[a.Page].Bounds()
				require.True(t, rectFromImage(bounds).ContainsRect(a.Packed.Inflate(tc.padding, tc.padding)),
					"entry %d %s outside page %v", i, a.Packed.String(), bounds)
				assert.Equal(t, colors[i], p.Pages()[a.Page].NRGBAAt(a.Packed.X, a.Packed.Y))
				if tc.pot {
					assert.Equal(t, nextPowerOfTwo(bounds.Dx()), bounds.Dx())
					assert.Equal(t, nextPowerOfTwo(bounds.Dy()), bounds.Dy())
				}

				for j := i + 1; j < len(entries); j++ {
					b := entries[j]
					if a.Page != b.Page {
						continue
					}
					ra := a.Packed.Inflate(tc.padding, tc.padding)
					rb := b.Packed.Inflate(tc.padding, tc.padding)
					ra.Width += tc.spacing
					ra.Height += tc.spacing
					if ra.Intersects(rb) {
						t.Errorf("Page %d: %s and %s intersect", a.Page, a.Packed.String(), b.Packed.String())
					}
				}
			}
		})
	}
}
