package render

import (
	"encoding/json"
	"io"

	"github.com/codelens/codelens/internal/pipeline"
	"github.com/codelens/codelens/pkg/codelens"
)

// jsonReport is the stable on-disk/CI shape of a scan: findings plus the
// global signals and diagnostics needed to interpret them, deliberately
// narrower than the full SignalField (per-file graph internals are an
// implementation detail, not a reporting contract).
type jsonReport struct {
	Findings    []codelens.Finding     `json:"findings"`
	Global      codelens.GlobalSignals `json:"global"`
	Tier        codelens.Tier          `json:"tier"`
	Diagnostics pipeline.Diagnostics   `json:"diagnostics"`
}

// RenderJSON writes result as indented JSON to w.
func RenderJSON(w io.Writer, result *pipeline.Result) error {
	report := jsonReport{
		Findings:    result.Findings,
		Global:      result.Field.Global,
		Tier:        result.Field.Tier,
		Diagnostics: result.Diagnostics,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
