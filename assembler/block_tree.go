package assembler

// BlockID indexes a block in a BlockTree.
type BlockID int

const noBlock BlockID = -1

// BlockEntry is either a buffered line or a nested block.
type BlockEntry struct {
	Line  *SourceLine
	Child BlockID
}

// Block is one node of a BlockTree. BackLink is the enclosing block, or -1
// for a root.
type Block[T any] struct {
	Key      T
	Entries  []BlockEntry
	BackLink BlockID
}

// BlockTree is an arena of nested blocks linked by index.
type BlockTree[T any] struct {
	blocks  []Block[T]
	current BlockID
}

// NewBlockTree returns an empty tree with no open block.
func NewBlockTree[T any]() *BlockTree[T] {
	return &BlockTree[T]{current: noBlock}
}

// Open starts a block inside the current one and makes it current.
func (t *BlockTree[T]) Open(key T) BlockID {
	id := BlockID(len(t.blocks))
	t.blocks = append(t.blocks, Block[T]{Key: key, BackLink: t.current})
	if t.current != noBlock {
		parent := &t.blocks[t.current]
		parent.Entries = append(parent.Entries, BlockEntry{Child: id})
	}
	t.current = id
	return id
}

// Add appends line to the current block.
func (t *BlockTree[T]) Add(line *SourceLine) bool {
	if t.current == noBlock {
		return false
	}
	b := &t.blocks[t.current]
	b.Entries = append(b.Entries, BlockEntry{Line: line, Child: noBlock})
	return true
}

// Close ends the current block and returns it.
func (t *BlockTree[T]) Close() (BlockID, bool) {
	if t.current == noBlock {
		return noBlock, false
	}
	id := t.current
	t.current = t.blocks[id].BackLink
	return id, true
}

// Current returns the open block, or -1.
func (t *BlockTree[T]) Current() BlockID {
	return t.current
}

// IsOpen reports whether any block is open.
func (t *BlockTree[T]) IsOpen() bool {
	return t.current != noBlock
}

// Depth counts the open blocks.
func (t *BlockTree[T]) Depth() int {
	n := 0
	for id := t.current; id != noBlock; id = t.blocks[id].BackLink {
		n++
	}
	return n
}

// Node returns the block with the given id.
func (t *BlockTree[T]) Node(id BlockID) *Block[T] {
	return &t.blocks[id]
}

// Reset discards every block.
func (t *BlockTree[T]) Reset() {
	t.blocks = t.blocks[:0]
	t.current = noBlock
}
