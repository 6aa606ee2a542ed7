package promptblocks

import (
	"sort"
)

// Document is the ordered sequence of content elements a user assembles.
// Elements sort by their Order key; ties keep insertion order. A Document is
// owned by a single editing session and is not safe for concurrent mutation.
type Document struct {
	elements []Element
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{}
}

// Len returns the number of elements.
func (d *Document) Len() int {
	return len(d.elements)
}

// Elements returns the elements in ascending order. Ties are broken by
// insertion order. The returned slice is a copy; the elements are shared.
func (d *Document) Elements() []Element {
	sorted := make([]Element, len(d.elements))
	copy(sorted, d.elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder() < sorted[j].SortOrder()
	})
	return sorted
}

// Get returns the element with the given synthetic ID.
func (d *Document) Get(elementID string) (Element, bool) {
	for _, el := range d.elements {
		if el.ElementID() == elementID {
			return el, true
		}
	}
	return nil, false
}

// AppendText adds a text element at the end and returns it.
func (d *Document) AppendText(content string) *TextElement {
	el := &TextElement{
		ID:      generateElementID(),
		Order:   d.appendOrder(),
		Content: content,
	}
	d.elements = append(d.elements, el)
	return el
}

// AppendBlock adds a non-overridden block reference at the end and returns it.
func (d *Document) AppendBlock(blockID int64) *BlockElement {
	el := &BlockElement{
		ID:        generateElementID(),
		Order:     d.appendOrder(),
		BlockID:   blockID,
		BlockType: BlockTypePreset,
	}
	d.elements = append(d.elements, el)
	return el
}

// InsertTextAfter inserts a text element after the element with afterID.
// An empty afterID inserts at the very start of the document.
func (d *Document) InsertTextAfter(afterID string, content string) (*TextElement, error) {
	order, err := d.insertOrder(afterID)
	if err != nil {
		return nil, err
	}
	el := &TextElement{
		ID:      generateElementID(),
		Order:   order,
		Content: content,
	}
	d.elements = append(d.elements, el)
	return el, nil
}

// InsertBlockAfter inserts a block reference after the element with afterID.
// An empty afterID inserts at the very start of the document.
func (d *Document) InsertBlockAfter(afterID string, blockID int64) (*BlockElement, error) {
	order, err := d.insertOrder(afterID)
	if err != nil {
		return nil, err
	}
	el := &BlockElement{
		ID:        generateElementID(),
		Order:     order,
		BlockID:   blockID,
		BlockType: BlockTypePreset,
	}
	d.elements = append(d.elements, el)
	return el, nil
}

// Remove deletes the element with the given ID.
// Returns true if the element existed and was removed.
func (d *Document) Remove(elementID string) bool {
	for i, el := range d.elements {
		if el.ElementID() == elementID {
			d.elements = append(d.elements[:i], d.elements[i+1:]...)
			return true
		}
	}
	return false
}

// MoveUp swaps the element's order key with its predecessor in sorted order.
// Moving the first element is a no-op.
func (d *Document) MoveUp(elementID string) error {
	return d.swapWithNeighbor(elementID, -1)
}

// MoveDown swaps the element's order key with its successor in sorted order.
// Moving the last element is a no-op.
func (d *Document) MoveDown(elementID string) error {
	return d.swapWithNeighbor(elementID, +1)
}

// Normalize renumbers all elements to consecutive integer orders (0, 1, 2,
// ...) preserving the current sorted order. Call it to recover precision
// after many fractional midpoint insertions at the same slot, and to clear
// duplicate order keys.
func (d *Document) Normalize() {
	for i, el := range d.Elements() {
		el.setOrder(float64(i))
	}
}

// appendOrder returns the order key for a new last element.
func (d *Document) appendOrder() float64 {
	if len(d.elements) == 0 {
		return 0
	}
	return d.maxOrder() + 1
}

// insertOrder computes the fractional order key for inserting after afterID.
// Midpoint of the neighbors; max+1 when inserting at the end; min-1 when
// inserting at the very start. Repeated midpoint insertion at one slot
// eventually exhausts float64 precision; Normalize is the recovery path.
func (d *Document) insertOrder(afterID string) (float64, error) {
	if len(d.elements) == 0 {
		return 0, nil
	}
	if afterID == "" {
		return d.minOrder() - 1, nil
	}

	sorted := d.Elements()
	for i, el := range sorted {
		if el.ElementID() != afterID {
			continue
		}
		if i == len(sorted)-1 {
			return el.SortOrder() + 1, nil
		}
		return (el.SortOrder() + sorted[i+1].SortOrder()) / 2, nil
	}
	return 0, NewElementNotFoundError(afterID)
}

// swapWithNeighbor swaps order keys with the sorted neighbor at offset delta.
func (d *Document) swapWithNeighbor(elementID string, delta int) error {
	sorted := d.Elements()
	for i, el := range sorted {
		if el.ElementID() != elementID {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(sorted) {
			return nil
		}
		neighbor := sorted[j]
		elOrder := el.SortOrder()
		el.setOrder(neighbor.SortOrder())
		neighbor.setOrder(elOrder)
		return nil
	}
	return NewElementNotFoundError(elementID)
}

func (d *Document) maxOrder() float64 {
	max := d.elements[0].SortOrder()
	for _, el := range d.elements[1:] {
		if el.SortOrder() > max {
			max = el.SortOrder()
		}
	}
	return max
}

func (d *Document) minOrder() float64 {
	min := d.elements[0].SortOrder()
	for _, el := range d.elements[1:] {
		if el.SortOrder() < min {
			min = el.SortOrder()
		}
	}
	return min
}

// addDecoded appends an element with a pre-assigned order during decoding.
func (d *Document) addDecoded(el Element) {
	d.elements = append(d.elements, el)
}
