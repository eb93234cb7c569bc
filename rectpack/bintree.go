package rectpack

// nilNode 表示不存在的子节点。
const nilNode int32 = -1

// node 是二叉装箱树中的一个空闲或已用区域。
type node struct {
	rect  Rect
	used  bool
	right int32
	down  int32
}

// nodePool 是容量固定的节点池，通过整数下标寻址。容量在打包开始前确定，
// 之后不会扩容，因此下标在整个打包过程中保持有效。
type nodePool struct {
	nodes []node
}

// newNodePool 为 entries 个待打包条目创建节点池。每次放置最多消耗 4 个节点
// (扩展根节点 2 个，分裂 2 个)，每页的种子条目消耗 3 个。
func newNodePool(entries int) *nodePool {
	return &nodePool{nodes: make([]node, 0, 4*max(entries, 1))}
}

func (p *nodePool) alloc(r Rect) int32 {
	if len(p.nodes) == cap(p.nodes) {
		panic("rectpack: node pool exhausted")
	}
	p.nodes = append(p.nodes, node{rect: r, right: nilNode, down: nilNode})
	return int32(len(p.nodes) - 1)
}

func (p *nodePool) reset() {
	p.nodes = p.nodes[:0]
}

// binTree 是单页的可增长二叉装箱树。根节点从种子条目的尺寸开始，
// 放不下时向右或向下扩展，但任何方向都不会超过 maxSize。
type binTree struct {
	pool    *nodePool
	root    int32
	maxSize int
	stack   []int32
}

func newBinTree(pool *nodePool, maxSize int) *binTree {
	return &binTree{pool: pool, root: nilNode, maxSize: maxSize}
}

// reset 丢弃上一页的所有节点，并以 w*h 的根节点开始新的一页。
func (t *binTree) reset(w, h int) {
	t.pool.reset()
	t.root = t.pool.alloc(NewRect(0, 0, w, h))
}

// size 返回当前根节点的尺寸。
func (t *binTree) size() Size {
	return t.pool.nodes[t.root].rect.Size
}

// insert 为 w*h 的区域寻找位置，必要时扩展树。返回区域左上角；
// 在 maxSize 内无法放置时 ok 为 false。
func (t *binTree) insert(w, h int) (pos Point, ok bool) {
	if n := t.find(t.root, w, h); n != nilNode {
		return t.split(n, w, h), true
	}
	return t.grow(w, h)
}

// find 按先右后下的深度优先顺序查找第一个能容纳 w*h 的空闲叶子。
func (t *binTree) find(root int32, w, h int) int32 {
	nodes := t.pool.nodes
	t.stack = append(t.stack[:0], root)
	for len(t.stack) > 0 {
		i := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		n := &nodes[i]
		if n.used {
			if n.down != nilNode {
				t.stack = append(t.stack, n.down)
			}
			if n.right != nilNode {
				t.stack = append(t.stack, n.right)
			}
			continue
		}
		if w <= n.rect.Width && h <= n.rect.Height {
			return i
		}
	}
	return nilNode
}

// split 将叶子标记为已用，并在其下方和右侧生成两个空闲子节点。
func (t *binTree) split(i int32, w, h int) Point {
	r := t.pool.nodes[i].rect
	down := t.pool.alloc(NewRect(r.X, r.Y+h, r.Width, r.Height-h))
	right := t.pool.alloc(NewRect(r.X+w, r.Y, r.Width-w, h))
	n := &t.pool.nodes[i]
	n.used = true
	n.down = down
	n.right = right
	return r.Point
}

// grow 向右或向下扩展根节点以容纳 w*h，优先选择让树更接近正方形的方向。
func (t *binTree) grow(w, h int) (Point, bool) {
	root := t.pool.nodes[t.root].rect
	canGrowRight := h <= root.Height && root.Width+w <= t.maxSize
	canGrowDown := w <= root.Width && root.Height+h <= t.maxSize

	shouldGrowRight := canGrowRight && root.Height >= root.Width+w
	shouldGrowDown := canGrowDown && root.Width >= root.Height+h

	switch {
	case shouldGrowRight:
		return t.growRight(w, h)
	case shouldGrowDown:
		return t.growDown(w, h)
	case canGrowRight:
		return t.growRight(w, h)
	case canGrowDown:
		return t.growDown(w, h)
	}
	return Point{}, false
}

func (t *binTree) growRight(w, h int) (Point, bool) {
	old := t.root
	r := t.pool.nodes[old].rect
	right := t.pool.alloc(NewRect(r.Width, 0, w, r.Height))
	t.root = t.pool.alloc(NewRect(0, 0, r.Width+w, r.Height))
	n := &t.pool.nodes[t.root]
	n.used = true
	n.down = old
	n.right = right
	return t.place(w, h)
}

func (t *binTree) growDown(w, h int) (Point, bool) {
	old := t.root
	r := t.pool.nodes[old].rect
	down := t.pool.alloc(NewRect(0, r.Height, r.Width, h))
	t.root = t.pool.alloc(NewRect(0, 0, r.Width, r.Height+h))
	n := &t.pool.nodes[t.root]
	n.used = true
	n.down = down
	n.right = old
	return t.place(w, h)
}

func (t *binTree) place(w, h int) (Point, bool) {
	if n := t.find(t.root, w, h); n != nilNode {
		return t.split(n, w, h), true
	}
	return Point{}, false
}
