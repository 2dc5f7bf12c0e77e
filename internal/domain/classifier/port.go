package classifier

import "context"

// Client port untuk kapabilitas text-classification eksternal. Adapter
// mengembalikan teks balasan mentah; decoding defensif terjadi di coordinator.
type Client interface {
	MatchDiagram(ctx context.Context, text, diagramList string) (string, Usage, error)
	GenerateReport(ctx context.Context, in ReportInput) (string, Usage, error)
}
