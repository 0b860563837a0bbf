package virtualscroll

// Params is the scroll geometry. Heights and offsets share one unit, pixels
// in a browser or rows in a terminal.
type Params struct {
	ScrollOffset    int
	ItemHeight      int
	ContainerHeight int
	ItemCount       int
	Buffer          int
	Overscan        int
}

// Range is the slice [Start, End) of items to render.
type Range struct {
	Start int
	End   int

	// VisibleCount is the number of items that fit in the container.
	VisibleCount int

	// RenderOffset is where the first rendered item sits.
	RenderOffset int

	// TotalHeight is the height of the full list.
	TotalHeight int
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether index falls inside the range.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// Window computes the render range. Non-positive item heights are treated
// as 1 and negative offsets, buffers and overscans as 0, so the result
// always satisfies 0 <= Start <= End <= ItemCount.
func Window(p Params) Range {
	if p.ItemHeight <= 0 {
		p.ItemHeight = 1
	}
	if p.ItemCount <= 0 {
		return Range{}
	}
	p.ScrollOffset = max(p.ScrollOffset, 0)
	p.ContainerHeight = max(p.ContainerHeight, 0)
	p.Buffer = max(p.Buffer, 0)
	p.Overscan = max(p.Overscan, 0)

	visible := (p.ContainerHeight + p.ItemHeight - 1) / p.ItemHeight
	start := max(0, p.ScrollOffset/p.ItemHeight-p.Buffer)
	start = min(start, p.ItemCount)
	end := min(p.ItemCount, start+visible+2*p.Buffer+p.Overscan)

	return Range{
		Start:        start,
		End:          end,
		VisibleCount: visible,
		RenderOffset: start * p.ItemHeight,
		TotalHeight:  p.ItemCount * p.ItemHeight,
	}
}
