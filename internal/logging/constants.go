package logging

// Standardized field names for structured logging.
const (
	FieldRequestID    = "request_id"
	FieldFile         = "file_path"
	FieldDocumentType = "document_type"
	FieldStage        = "stage"
	FieldPages        = "pages"
	FieldChars        = "chars"
	FieldCategory     = "category"
	FieldCategoryID   = "category_id"
	FieldDescription  = "description"
	FieldAmount       = "amount"
	FieldBatch        = "batch"
	FieldBatchSize    = "batch_size"
	FieldDelay        = "delay"
	FieldOperation    = "operation"
	FieldProvider     = "provider"
	FieldModel        = "model"
	FieldStatus       = "status"
	FieldReason       = "reason"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldCount        = "count"
	FieldOutputFile   = "output_file"
)
