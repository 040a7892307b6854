package services

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/shopspring/decimal"
)

// DefaultCompanyName is printed on invoices when none is configured
const DefaultCompanyName = "Blue Bay Mechanical"

//go:embed templates/invoice.html.tmpl
var invoiceTemplate string

var invoiceFuncs = template.FuncMap{
	"number":     formatNumber,
	"longDate":   longDate,
	"capitalize": capitalize,
	"clientName": clientName,
}

// InvoiceRenderer renders a billing record as a printable HTML invoice
type InvoiceRenderer struct {
	tmpl        *template.Template
	companyName string
	now         func() time.Time
}

type invoiceView struct {
	Billing     *models.Billing
	CompanyName string
	GeneratedAt time.Time
}

var (
	invoiceRendererMu       sync.RWMutex
	invoiceRendererInstance *InvoiceRenderer

	defaultInvoiceRenderer = sync.OnceValue(func() *InvoiceRenderer {
		r, err := NewInvoiceRenderer(DefaultCompanyName)
		if err != nil {
			panic(err)
		}
		return r
	})
)

// NewInvoiceRenderer parses the embedded invoice template
func NewInvoiceRenderer(companyName string) (*InvoiceRenderer, error) {
	tmpl, err := template.New("invoice").Funcs(invoiceFuncs).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	if companyName == "" {
		companyName = DefaultCompanyName
	}
	return &InvoiceRenderer{
		tmpl:        tmpl,
		companyName: companyName,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// InitInvoiceRenderer builds the process-wide renderer
func InitInvoiceRenderer(companyName string) (*InvoiceRenderer, error) {
	r, err := NewInvoiceRenderer(companyName)
	if err != nil {
		return nil, err
	}
	invoiceRendererMu.Lock()
	invoiceRendererInstance = r
	invoiceRendererMu.Unlock()
	return r, nil
}

// GetInvoiceRenderer returns the process-wide renderer, falling back to one
// built once with the default company name
func GetInvoiceRenderer() *InvoiceRenderer {
	invoiceRendererMu.RLock()
	r := invoiceRendererInstance
	invoiceRendererMu.RUnlock()
	if r != nil {
		return r
	}
	return defaultInvoiceRenderer()
}

// Render writes the invoice for b to w. b should have its client, work
// order and line items loaded.
func (r *InvoiceRenderer) Render(w io.Writer, b *models.Billing) error {
	view := invoiceView{
		Billing:     b,
		CompanyName: r.companyName,
		GeneratedAt: r.now(),
	}
	if err := r.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render invoice %s: %w", b.InvoiceNumber, err)
	}
	return nil
}

// RenderHTML renders the invoice into memory
func (r *InvoiceRenderer) RenderHTML(b *models.Billing) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatNumber prints v with two decimals and comma thousands separators
func formatNumber(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}

func longDate(v interface{}) string {
	switch d := v.(type) {
	case models.Date:
		return d.Time().Format("Jan 02, 2006")
	case *models.Date:
		if d == nil {
			return ""
		}
		return d.Time().Format("Jan 02, 2006")
	case time.Time:
		return d.Format("Jan 02, 2006")
	}
	return ""
}
