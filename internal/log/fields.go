package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDraftID    = "draft_id"
	FieldKind       = "kind"
	FieldItemID     = "item_id"
	FieldMonth      = "month"
	FieldYear       = "year"
	FieldNetPay     = "net_pay"
	FieldFileName   = "file_name"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentSlip     = "slip"
	ComponentCatalog  = "catalog"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentExport   = "export"
	ComponentWorker   = "worker"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
	ComponentTemplate = "template"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds the error text; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDraft adds the draft id and its pay period.
func (f LogFields) WithDraft(id, month string, year int) LogFields {
	f[FieldDraftID] = id
	f[FieldMonth] = month
	f[FieldYear] = year
	return f
}

// WithItem adds the ledger kind and item id targeted by a command.
func (f LogFields) WithItem(kind string, itemID int) LogFields {
	f[FieldKind] = kind
	f[FieldItemID] = itemID
	return f
}

// WithHTTP adds request and response fields for an access log line.
func (f LogFields) WithHTTP(method, path string, status int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = status
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
