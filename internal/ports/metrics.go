package ports

// Metrics counts pipeline outcomes. Implementations must be cheap; they are
// called on every change.
type Metrics interface {
	Admitted()
	Denied()
	Parsed(language string)
	ParseFailed()
	ReadFailed()
	Deleted()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) Admitted() {}
func (NopMetrics) Denied() {}
func (NopMetrics) Parsed(string) {}
func (NopMetrics) ParseFailed() {}
func (NopMetrics) ReadFailed() {}
func (NopMetrics) Deleted() {}
