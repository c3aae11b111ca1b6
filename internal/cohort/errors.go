package cohort

import "fmt"

// DataLoadError rejects a LoadData call. The store keeps its previous state
// (or stays uninitialized on a first load); partial loads never happen.
type DataLoadError struct {
	Reason string
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("cohort load rejected: %s", e.Reason)
}

// InvalidFilterError rejects a SetFilter call whose filter cannot be
// evaluated against the known schema. The store's state is unchanged; a
// malformed filter is never applied and left to silently match nothing.
type InvalidFilterError struct {
	FilterID string
	Reason   string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.FilterID, e.Reason)
}
