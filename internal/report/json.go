package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/unbound-force/scry/internal/orchestrator"
	"github.com/unbound-force/scry/internal/syntax"
)

// FunctionReport is one function's assembled analysis output, shaped
// for JSON/text rendering.
type FunctionReport struct {
	MFA        string   `json:"mfa"`
	Effect     string   `json:"effect"`
	Exceptions []string `json:"exceptions,omitempty"`
	Dynamic    bool     `json:"dynamic_exceptions,omitempty"`
	Terminates bool     `json:"terminates"`
	Errors     []string `json:"errors,omitempty"`
}

// ModuleReport groups a module's function reports.
type ModuleReport struct {
	Module    string           `json:"module"`
	Functions []FunctionReport `json:"functions"`
}

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version string         `json:"version"`
	Modules []ModuleReport `json:"modules"`
	Errors  []string       `json:"errors,omitempty"`
}

// Version is the report schema's semver tag, independent of the
// module's own release versioning.
const Version = "0.1.0"

// BuildModuleReports converts a ProjectResult into the sorted,
// JSON/text-friendly shape both writers in this package render.
func BuildModuleReports(pr orchestrator.ProjectResult) []ModuleReport {
	moduleNames := make([]string, 0, len(pr.Modules))
	for name := range pr.Modules {
		moduleNames = append(moduleNames, string(name))
	}
	sort.Strings(moduleNames)

	reports := make([]ModuleReport, 0, len(moduleNames))
	for _, name := range moduleNames {
		mr := pr.Modules[syntax.Symbol(name)]
		reports = append(reports, ModuleReport{
			Module:    name,
			Functions: buildFunctionReports(mr),
		})
	}
	return reports
}

func buildFunctionReports(mr orchestrator.ModuleResult) []FunctionReport {
	mfaStrings := make([]string, 0, len(mr.Effects))
	byString := make(map[string]syntax.MFA, len(mr.Effects))
	for mfa := range mr.Effects {
		s := mfa.String()
		mfaStrings = append(mfaStrings, s)
		byString[s] = mfa
	}
	sort.Strings(mfaStrings)

	errsByMFA := make(map[syntax.MFA][]string)
	for _, e := range mr.Errors {
		errsByMFA[e.MFA] = append(errsByMFA[e.MFA], string(e.Kind)+": "+e.Error)
	}

	out := make([]FunctionReport, 0, len(mfaStrings))
	for _, s := range mfaStrings {
		mfa := byString[s]
		ce := mr.Effects[mfa]
		fr := FunctionReport{
			MFA:        s,
			Effect:     ce.String(),
			Terminates: true,
			Errors:     errsByMFA[mfa],
		}
		if t, ok := mr.Terminations[mfa]; ok {
			fr.Terminates = t
		}
		if info, ok := mr.Exceptions[mfa]; ok {
			fr.Exceptions = info.Errors.Tags
			fr.Dynamic = info.Errors.Dynamic
		}
		out = append(out, fr)
	}
	return out
}

// WriteJSON writes a ProjectResult as formatted JSON to the writer.
func WriteJSON(w io.Writer, pr orchestrator.ProjectResult) error {
	report := JSONReport{
		Version: Version,
		Modules: BuildModuleReports(pr),
		Errors:  pr.Errors,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
