package components

// List is a scrollable list with a cursor that keeps itself in view.
type List struct {
	Items    []string
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	return &List{PageSize: max(pageSize, 1)}
}

// SetItems replaces items and resets cursor.
func (l *List) SetItems(items []string) {
	l.Items = items
	l.Cursor = 0
	l.Offset = 0
}

// Reset replaces items and moves the cursor to the item equal to current,
// or to the first item when current is gone.
func (l *List) Reset(items []string, current string) {
	l.Items = items
	l.Cursor = 0
	for i, it := range items {
		if it == current {
			l.Cursor = i
			break
		}
	}
	l.clampOffset()
}

// SetPageSize changes how many rows are visible.
func (l *List) SetPageSize(n int) {
	l.PageSize = max(n, 1)
	l.clampOffset()
}

// Down moves the cursor down.
func (l *List) Down() {
	if l.Cursor < len(l.Items)-1 {
		l.Cursor++
		l.clampOffset()
	}
}

// Up moves the cursor up.
func (l *List) Up() {
	if l.Cursor > 0 {
		l.Cursor--
		l.clampOffset()
	}
}

func (l *List) clampOffset() {
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+l.PageSize {
		l.Offset = l.Cursor - l.PageSize + 1
	}
	if limit := max(len(l.Items)-l.PageSize, 0); l.Offset > limit {
		l.Offset = limit
	}
}

// Visible returns the currently visible items.
func (l *List) Visible() []string {
	if len(l.Items) == 0 {
		return nil
	}
	end := min(l.Offset+l.PageSize, len(l.Items))
	return l.Items[l.Offset:end]
}

// Current returns the item under the cursor.
func (l *List) Current() (string, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return "", false
	}
	return l.Items[l.Cursor], true
}

// Selected returns the index of the selected item.
func (l *List) Selected() int {
	return l.Cursor
}

// IsSelected returns true if the given absolute index is the cursor.
func (l *List) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts a relative (visible) index to absolute.
func (l *List) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}
