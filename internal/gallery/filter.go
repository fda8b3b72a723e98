package gallery

// FilterCategory is the active-filter indicator shown above the grid.
type FilterCategory struct {
	SelectedTag string
	// Matches is the number of visible images while filtered.
	Matches int
	// Clear drops the filter. It is bound to the owning view.
	Clear func() `json:"-"`
}

// Active reports whether a filter is applied.
func (f FilterCategory) Active() bool { return f.SelectedTag != "" }
