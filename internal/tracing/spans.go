package tracing

// Span attribute keys.
const (
	AttrIndividualID = "individual.id"
	AttrMethod       = "record.method"
	AttrDate         = "record.date"
	AttrRangeStart   = "range.start"
	AttrRangeEnd     = "range.end"
	AttrRemoved      = "records.removed"
	AttrChangeKind   = "change.kind"
	AttrBackend      = "store.backend"
	AttrSessionID    = "session.id"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanMark      = "ledger.mark"
	SpanClearDate = "ledger.clear_date"
	SpanClearAll  = "ledger.clear_all"
	SpanRegister  = "registry.save"
	SpanRemove    = "registry.remove"
	SpanPersist   = "store.persist"
	SpanLoad      = "store.load"
	SpanReport    = "report.build"
)
