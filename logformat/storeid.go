package logformat

// StoreID identifies the store a WAL segment belongs to. It is stamped
// into every segment's Header entry and reported in the scan verdict;
// recovery.Decide does not compare it against anything.
type StoreID struct {
	CreationTime int64
	RandomID     uint64
}

// Equal reports whether s and other identify the same store.
func (s StoreID) Equal(other StoreID) bool {
	return s.CreationTime == other.CreationTime && s.RandomID == other.RandomID
}
