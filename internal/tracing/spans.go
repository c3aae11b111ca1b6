package tracing

// Span attribute keys used across the application.
const (
	// Dataset attributes
	AttrDatasetName   = "dataset.name"
	AttrDatasetFormat = "dataset.format"
	AttrMutationCount = "dataset.mutation_count"
	AttrSampleCount   = "dataset.sample_count"

	// Cohort attributes
	AttrFilterID    = "cohort.filter.id"
	AttrFilterScope = "cohort.filter.scope"
	AttrFilterCount = "cohort.filter.count"

	// HTTP attributes
	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"
	AttrUser       = "user.name"

	// Error attributes
	AttrErrorMessage = "error.message"
	AttrErrorType    = "error.type"
)

// Span name prefixes for consistent naming.
const (
	SpanPrefixHTTP    = "http."
	SpanPrefixDataset = "dataset."
	SpanPrefixCohort  = "cohort."
)

// Event names for span events.
const (
	EventDatasetLoaded = "dataset.loaded"
	EventFilterApplied = "cohort.filter.applied"
	EventFilterRemoved = "cohort.filter.removed"
	EventRecomputeDone = "cohort.recompute.done"
	EventLoginRejected = "auth.login.rejected"
	EventTokenIssued   = "auth.token.issued"
)
