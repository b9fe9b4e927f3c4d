package log

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldCollection = "collection"
	FieldDocID      = "doc_id"
	FieldMonth      = "month"
	FieldContext    = "context"
	FieldCurrency   = "currency"
	FieldAmount     = "amount"
	FieldTxType     = "tx_type"
	FieldVersion    = "snapshot_version"
	FieldCount      = "count"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentFinance   = "finance"
	ComponentBudget    = "budget"
	ComponentSnapshot  = "snapshot"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentImport    = "import"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRefresh  = "refresh"
	OpPublish  = "publish"
	OpImport   = "import"
	OpExport   = "export"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeInternal      = "internal_error"
)

// Fields builds key/value pairs for slog calls.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithError(err error, errorType string) Fields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithDocument tags a persisted document.
func (f Fields) WithDocument(collection, id string) Fields {
	f[FieldCollection] = collection
	f[FieldDocID] = id
	return f
}

func (f Fields) WithTransaction(txType, currency string, amount float64, context string) Fields {
	f[FieldTxType] = txType
	f[FieldCurrency] = currency
	f[FieldAmount] = amount
	f[FieldContext] = context
	return f
}

func (f Fields) WithBudget(month, context string) Fields {
	f[FieldMonth] = month
	f[FieldContext] = context
	return f
}

func (f Fields) WithHTTP(method, path, query string, status int, durationMs int64) Fields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	f[FieldStatusCode] = status
	f[FieldDuration] = durationMs
	f[FieldSuccess] = status < 400
	return f
}

// Args flattens the fields for slog.
func (f Fields) Args() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
