package report

import (
	"fmt"
	"html/template"

	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/service"
)

type htmlView struct {
	Title         string
	RunID         string
	Simulation    string
	Calibration   string
	Consensus     string
	Opportunities []models.ValueOpportunity
	Signals       []htmlSignal
	Warnings      []models.Warning
}

type htmlSignal struct {
	Market    models.MarketKey
	Priority  string
	Stake     string
	Kelly     float64
	Reasoning string
}

func newHTMLView(a *service.Analysis) htmlView {
	v := htmlView{
		Title:         "Value Analysis",
		RunID:         a.RunID.String(),
		Opportunities: a.Opportunities,
		Warnings:      a.Warnings,
	}
	if a.Fixture != "" {
		v.Title += ": " + a.Fixture
	}
	if sim := a.Simulation; sim != nil {
		v.Simulation = fmt.Sprintf("%d iterations, %s, seed %d", sim.Iterations, sim.Distribution, sim.Seed)
	}
	if cal := a.Calibration; cal != nil {
		v.Calibration = fmt.Sprintf("factor %.3f, confidence %.2f (%s)", cal.Factor, cal.Confidence, cal.Quality)
	}
	v.Consensus = fmt.Sprintf("%s, confidence %.2f", a.Consensus.AgreementLevel, a.Consensus.OverallConfidence)
	for _, s := range a.Signals {
		v.Signals = append(v.Signals, htmlSignal{
			Market:    s.Market,
			Priority:  string(s.Priority),
			Stake:     s.Stake.StringFixed(2),
			Kelly:     s.KellyFraction,
			Reasoning: s.Reasoning,
		})
	}
	return v
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
}).Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p><strong>Run:</strong> {{.RunID}}</p>
<p><strong>Simulation:</strong> {{.Simulation}}</p>
<p><strong>Calibration:</strong> {{.Calibration}}</p>
<p><strong>Consensus:</strong> {{.Consensus}}</p>
<h2>Opportunities</h2>
<table>
<tr><th>Market</th><th>Tier</th><th>Odds</th><th>True</th><th>Implied</th><th>Edge</th><th>Confidence</th></tr>
{{range .Opportunities}}<tr><td>{{.Market}}</td><td>{{.Tier}}</td><td>{{printf "%.2f" .BookmakerOdds}}</td><td>{{pct .TrueProbability}}</td><td>{{pct .ImpliedProbability}}</td><td>{{printf "%.1f%%" .EdgePercentage}}</td><td>{{printf "%.2f" .Confidence}}</td></tr>
{{end}}</table>
<h2>Stakes</h2>
<table>
<tr><th>Market</th><th>Priority</th><th>Stake</th><th>Kelly</th><th>Reasoning</th></tr>
{{range .Signals}}<tr><td>{{.Market}}</td><td>{{.Priority}}</td><td>{{.Stake}}</td><td>{{printf "%.4f" .Kelly}}</td><td>{{.Reasoning}}</td></tr>
{{end}}</table>
{{if .Warnings}}<p><strong>Warnings:</strong>{{range .Warnings}} {{.}}{{end}}</p>
{{end}}</body>
</html>
`))
