package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var statementTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"formatMoney": FormatMoney,
	}

	templateContent, err := templateFS.ReadFile("templates/statement.html")
	if err != nil {
		// Fallback to built-in template if file not found
		statementTemplate = template.Must(template.New("statement").Funcs(funcMap).Parse(fallbackStatementTemplate))
		return
	}

	statementTemplate = template.Must(template.New("statement").Funcs(funcMap).Parse(string(templateContent)))
}

// FormatMoney renders a whole-currency amount with thousands separators.
func FormatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := []byte{}
	for i := 0; ; i++ {
		if i > 0 && i%3 == 0 {
			digits = append([]byte{','}, digits...)
		}
		digits = append([]byte{byte('0' + amount%10)}, digits...)
		amount /= 10
		if amount == 0 {
			break
		}
	}
	return sign + "$" + string(digits)
}

// StatementData holds data for earnings statement rendering
type StatementData struct {
	FreelancerName  string
	FreelancerEmail string
	GeneratedAt     time.Time
	Entries         []StatementEntry
	Total           int64
}

// StatementEntry is one credited project in the statement
type StatementEntry struct {
	ProjectTitle string
	Amount       int64
	CreditedAt   time.Time
}

// RenderStatementHTML renders the earnings statement template with provided data
func RenderStatementHTML(data StatementData) (string, error) {
	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackStatementTemplate is used if the embedded template fails to load
const fallbackStatementTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Earnings Statement</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #ddd; }
    .total { font-weight: bold; }
  </style>
</head>
<body>
  <h1>Earnings Statement</h1>
  <div class="meta">{{.FreelancerName}} ({{.FreelancerEmail}}) | Generated {{formatDate .GeneratedAt "Jan 2, 2006"}}</div>
  <table>
    <tr><th>Project</th><th>Credited</th><th>Amount</th></tr>
    {{range .Entries}}
    <tr><td>{{.ProjectTitle}}</td><td>{{formatDate .CreditedAt "Jan 2, 2006"}}</td><td>{{formatMoney .Amount}}</td></tr>
    {{end}}
    <tr class="total"><td colspan="2">Total</td><td>{{formatMoney .Total}}</td></tr>
  </table>
</body>
</html>`
