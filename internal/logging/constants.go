package logging

// Field names shared across the tracker so log output stays greppable.
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldPipeline    = "pipeline"
	FieldStrategy    = "strategy"
	FieldMode        = "mode"
	FieldMethod      = "method"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldExpenseID   = "expense_id"
	FieldAmount      = "amount"
	FieldBackend     = "backend"
	FieldRequestID   = "request_id"
	FieldGeneration  = "generation"
	FieldAttempt     = "attempt"
	FieldModel       = "model"
	FieldReason      = "reason"
	FieldCount       = "count"
	FieldDuration    = "duration_ms"
	FieldFile        = "file_path"
	FieldOutputFile  = "output_file"
	FieldAddress     = "address"
)
