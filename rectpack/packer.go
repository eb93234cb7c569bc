package rectpack

import (
	"fmt"
	"image"
	"slices"
)

// DefaultSize 定义了页面的默认最大宽度/高度值，基于现代GPU的最大纹理尺寸。
const DefaultSize = 8192

// Packer 收集精灵图像并将它们打包进一个或多个页面位图。
//
// 使用方式为"先累积后打包"：多次调用 Add/AddRect，然后调用 Pack。
// Packer 不是并发安全的，多个 goroutine 使用时需由调用方串行化。
type Packer struct {
	// MaxSize 是页面在任一方向上的最大尺寸，必须大于 0。
	//
	// 默认值：DefaultSize
	MaxSize int

	// Spacing 是相邻矩形之间保留的空隙大小。
	//
	// 默认值：0
	Spacing int

	// Padding 是每个矩形四周保留的出血边距，Pack 时会用边缘像素填充。
	//
	// 默认值：0
	Padding int

	// PowerOfTwo 表示页面宽高是否分别向上取整到 2 的幂。
	//
	// 默认值：false
	PowerOfTwo bool

	// AlphaThreshold 是裁剪时视为透明的最大 alpha 值，由 Add 读取。
	//
	// 默认值：0(只裁剪完全透明的像素)
	AlphaThreshold uint8

	entries  []Entry
	pages    []*image.NRGBA
	arena    pixelArena
	sortFunc SortFunc
	sortRev  bool
	dirty    bool
}

// NewPacker 创建并初始化一个新的打包器
// 参数:
//
//	maxSize - 页面的最大宽度和高度(必须大于0)
//
// 返回:
//
//	*Packer - 初始化成功的打包器实例
//	error - 如果参数无效则返回错误
func NewPacker(maxSize int) (*Packer, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be greater than 0 (given %v)", ErrInvalidConfig, maxSize)
	}
	return &Packer{
		MaxSize:  maxSize,
		sortFunc: SortArea,
	}, nil
}

// NewDefaultPacker 创建使用 DefaultSize 的打包器
func NewDefaultPacker() *Packer {
	packer, _ := NewPacker(DefaultSize)
	return packer
}

// Sorter 设置 Pack 时条目的排序函数和排序顺序。排序是稳定的，
// 相等的条目保持插入顺序。
//
// 默认比较函数为 SortArea
func (p *Packer) Sorter(compare SortFunc, reverse bool) {
	p.sortFunc = compare
	p.sortRev = reverse
}

// Add 添加一个图像，使用整个图像作为源区域。
func (p *Packer) Add(id uint64, img image.Image) {
	p.AddRect(id, img, img.Bounds())
}

// AddRect 添加图像中 src 区域的部分。透明边缘会被裁剪，裁剪后的像素被复制到
// 打包器内部，调用方之后可以自由修改或释放 img。完全透明的区域被记录为空条目。
//
// AddRect 不会修改已有页面，只影响下一次 Pack 的结果。
func (p *Packer) AddRect(id uint64, img image.Image, src image.Rectangle) {
	nrgba, r := toNRGBA(img, src)
	p.dirty = true

	trim, ok := OpaqueBounds(nrgba, r, p.AlphaThreshold)
	if !ok {
		p.entries = append(p.entries, Entry{
			ID:    id,
			Empty: true,
			Frame: NewRect(0, 0, r.Dx(), r.Dy()),
			Page:  -1,
		})
		return
	}
	p.entries = append(p.entries, Entry{
		ID:     id,
		Frame:  NewRect(r.Min.X-trim.Min.X, r.Min.Y-trim.Min.Y, r.Dx(), r.Dy()),
		Packed: NewRect(0, 0, trim.Dx(), trim.Dy()),
		offset: p.arena.appendBlock(nrgba, trim),
	})
}

// Entries 按插入顺序返回所有条目(由内部管理，如需修改请复制)
func (p *Packer) Entries() []Entry {
	return p.entries
}

// Pages 返回最近一次成功 Pack 生成的页面(由内部管理，下一次 Pack 或 Clear
// 之后会被替换，如需保留请复制)
func (p *Packer) Pages() []*image.NRGBA {
	return p.pages
}

// Dirty 报告自上次成功 Pack 以来是否添加了新的条目。
func (p *Packer) Dirty() bool {
	return p.dirty
}

// Used 计算页面的空间利用率(已打包的裁剪面积 / 页面面积)
func (p *Packer) Used(page int) float64 {
	if page < 0 || page >= len(p.pages) {
		return 0
	}
	area := 0
	for i := range p.entries {
		if e := &p.entries[i]; !e.Empty && e.Page == page {
			area += e.Packed.Area()
		}
	}
	b := p.pages[page].Bounds()
	return float64(area) / float64(b.Dx()*b.Dy())
}

// Clear 丢弃所有页面、条目和像素副本(保留配置)
func (p *Packer) Clear() {
	p.entries = nil
	p.pages = nil
	p.arena.reset()
	p.dirty = false
}

func (p *Packer) validate() error {
	if p.MaxSize <= 0 {
		return fmt.Errorf("%w: max size must be greater than 0 (given %v)", ErrInvalidConfig, p.MaxSize)
	}
	if p.Spacing < 0 || p.Padding < 0 {
		return fmt.Errorf("%w: spacing and padding must not be negative (given %v, %v)", ErrInvalidConfig, p.Spacing, p.Padding)
	}
	return nil
}

// order 返回非空条目的下标，按排序函数稳定排序。
func (p *Packer) order() []int {
	order := make([]int, 0, len(p.entries))
	for i := range p.entries {
		if !p.entries[i].Empty {
			order = append(order, i)
		}
	}
	compare := p.sortFunc
	if compare == nil {
		compare = SortArea
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if p.sortRev {
			a, b = b, a
		}
		return compare(p.entries[a].Packed.Size, p.entries[b].Packed.Size)
	})
	return order
}

// placement 是一次 Pack 中某个条目的临时结果，成功后才写回条目。
type placement struct {
	pos  Point
	page int
}

// Pack 打包所有条目并重新生成页面。没有新条目时不做任何事情，
// 重复调用会得到逐字节相同的页面。
//
// 任何条目加上两侧 Padding 超过 MaxSize 时返回 *OversizedError；
// 出错时不会修改已有的页面和条目。
func (p *Packer) Pack() error {
	if !p.dirty {
		return nil
	}
	if err := p.validate(); err != nil {
		return err
	}
	order := p.order()
	for _, i := range order {
		e := &p.entries[i]
		if e.Packed.Width+2*p.Padding > p.MaxSize || e.Packed.Height+2*p.Padding > p.MaxSize {
			return &OversizedError{
				Index:   i,
				ID:      e.ID,
				Size:    e.Packed.Size,
				Padding: p.Padding,
				MaxSize: p.MaxSize,
			}
		}
	}

	placed := make([]placement, len(p.entries))
	var pages []*image.NRGBA
	tree := newBinTree(newNodePool(len(order)), p.MaxSize)

	for next := 0; next < len(order); {
		page := len(pages)
		first := next

		seed := p.entries[order[next]].footprint(p.Padding, p.Spacing)
		tree.reset(seed.Width, seed.Height)
		for ; next < len(order); next++ {
			fp := p.entries[order[next]].footprint(p.Padding, p.Spacing)
			pos, ok := tree.insert(fp.Width, fp.Height)
			if !ok {
				break
			}
			placed[order[next]] = placement{
				pos:  Point{X: pos.X + p.Padding, Y: pos.Y + p.Padding},
				page: page,
			}
		}

		img := newPage(tree.size(), p.PowerOfTwo)
		for _, i := range order[first:next] {
			e := p.entries[i]
			e.Packed.Point = placed[i].pos
			composite(img, &p.arena, &e, p.Padding)
		}
		pages = append(pages, img)
	}

	for _, i := range order {
		e := &p.entries[i]
		e.Packed.Point = placed[i].pos
		e.Page = placed[i].page
	}
	p.pages = pages
	p.dirty = false
	return nil
}
