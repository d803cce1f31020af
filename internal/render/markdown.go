package render

import (
	"strings"
	"text/template"

	"binance_pnl/internal/analysis"

	"github.com/shopspring/decimal"
)

// Kept to the subset of markdown Telegram understands.
const reportTemplate = `📊 *{{ .Coin }}*, last {{ .TransactionCount }} transactions
Current: ` + "`{{ dec .CurrentPrice 8 }}`" + `
{{ if .ShowCostBasis }}
{{ sign .RealizedPL }} *P/L:* ` + "`{{ .RealizedPL }}`" + `{{ end }}{{ if .ShowSpread }}
{{ sign .RealizedPLPercent }} *P/L %:* ` + "`{{ dec .RealizedPLPercent 2 }}`" + ` ({{ .TrimmedBuys }} unmatched buys trimmed){{ end }}
*Price delta:* ` + "`{{ null .PriceDelta 4 }}`" + `
*Unrealized P/L:* ` + "`{{ null .UnrealizedPL 4 }}`" + `
*Open position:* ` + "`{{ dec .OpenPosition 2 }}`" + `{{ if .LockedPosition.IsPositive }} ({{ dec .LockedPosition 2 }} locked){{ end }}
*Last buy price:* ` + "`{{ null .LastBuyPrice 8 }}`" + `

*Bought:* ` + "`{{ dec .TotalCoinsBought 4 }}`" + ` for ` + "`{{ .TotalBuyCost }}`" + `{{ if .Reconciliation.DefectiveBuys }} (` + "`{{ .PricedBuyCost }}`" + ` in P/L){{ end }}
*Avg buy:* ` + "`{{ null .AvgBuyPrice 4 }}`" + `
*Sold:* ` + "`{{ dec .TotalCoinsSold 4 }}`" + ` for ` + "`{{ .TotalSellCost }}`" + `{{ if .Reconciliation.DefectiveSells }} (` + "`{{ .PricedSellCost }}`" + ` in P/L){{ end }}
*Avg sell:* ` + "`{{ null .AvgSellPrice 4 }}`" + `
{{ with .Reconciliation }}{{ if or .Ignored .DefectiveBuys .DefectiveSells }}
Ignored {{ .Ignored }}, defective buys {{ .DefectiveBuys }}, defective sells {{ .DefectiveSells }}
{{ end }}{{ end }}`

var markdownTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"dec":  round,
	"null": nullString,
	"sign": func(v decimal.Decimal) string {
		if v.IsNegative() {
			return "🔴"
		}
		return "🟢"
	},
}).Parse(reportTemplate))

// Markdown renders the report for chat clients.
func Markdown(r analysis.Report) (string, error) {
	var b strings.Builder
	if err := markdownTmpl.Execute(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}
