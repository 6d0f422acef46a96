package logkey

// Common keys for structured log attributes, so grepping logs stays sane.
const (
	TraceID   = "Trace ID"
	ERROR     = "Error"
	SessionID = "Session ID"
	BookID    = "Book ID"
	OrderID   = "Order ID"
)
