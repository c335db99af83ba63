package takeoff

// AcceptTableItem marks a table-generated item as reviewed.
func AcceptTableItem(items []Item, id int64) ([]Item, error) {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, ErrItemNotFound
	}
	out := make([]Item, len(items))
	copy(out, items)

	meta := ItemMetadata{}
	if out[idx].Metadata != nil {
		meta = *out[idx].Metadata
	}
	meta.Accepted = true
	out[idx].Metadata = &meta
	return out, nil
}

// RejectTableItem removes an item generated from a table.
func RejectTableItem(items []Item, id int64) ([]Item, error) {
	return RemoveItem(items, id)
}

// RemoveItem returns items without the item with id.
func RemoveItem(items []Item, id int64) ([]Item, error) {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, ErrItemNotFound
	}
	out := make([]Item, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), nil
}
