package notify

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

// Vars holds placeholder values keyed by name without braces.
type Vars map[string]string

// Placeholders lists the names templates may reference.
var Placeholders = []string{
	"churchName", "donorName", "firstName", "amount", "donationDate", "donationType", "checkNumber",
	"batchName", "countDate", "totalAmount", "cashAmount", "checkAmount", "donationCount",
	"primaryAttestor", "secondaryAttestor", "resetLink", "loginLink",
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_]*)\s*\}\}`)

// Render substitutes {{name}} placeholders. Values are HTML-escaped when
// escapeHTML is set; unknown names render as empty strings.
func Render(body string, vars Vars, escapeHTML bool) string {
	return placeholderRe.ReplaceAllStringFunc(body, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		v := vars[name]
		if escapeHTML {
			return html.EscapeString(v)
		}
		return v
	})
}

// Rendered is a template with placeholders applied.
type Rendered struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// RenderTemplate applies vars to every part of tpl. Subjects are plain text.
func RenderTemplate(tpl domain.EmailTemplate, vars Vars) Rendered {
	subject := strings.Join(strings.Fields(Render(tpl.Subject, vars, false)), " ")
	return Rendered{
		Subject:  subject,
		BodyHTML: Render(tpl.BodyHTML, vars, true),
		BodyText: Render(tpl.BodyText, vars, false),
	}
}

// UnknownPlaceholders returns referenced names that are not in Placeholders.
func UnknownPlaceholders(parts ...string) []string {
	known := make(map[string]struct{}, len(Placeholders))
	for _, p := range Placeholders {
		known[p] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, part := range parts {
		for _, m := range placeholderRe.FindAllStringSubmatch(part, -1) {
			name := m[1]
			if _, ok := known[name]; ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

const dateLayout = "January 2, 2006"

// ChurchVars are available to every template.
func ChurchVars(church *domain.Church) Vars {
	v := Vars{}
	if church != nil {
		v["churchName"] = church.Name
	}
	return v
}

// DonationVars describes one gift for the donor confirmation.
func DonationVars(church *domain.Church, batch *domain.Batch, d domain.Donation) Vars {
	v := ChurchVars(church)
	v["donorName"] = d.MemberName
	if first, _, ok := strings.Cut(d.MemberName, " "); ok {
		v["firstName"] = first
	} else {
		v["firstName"] = d.MemberName
	}
	v["amount"] = domain.FormatCents(d.AmountCents)
	v["donationType"] = strings.ToLower(string(d.Type))
	v["checkNumber"] = d.CheckNumber
	if batch != nil {
		v["donationDate"] = batch.CountDate.Format(dateLayout)
		v["batchName"] = batch.Name
	}
	return v
}

// BatchVars summarizes a finalized count for report recipients.
func BatchVars(church *domain.Church, batch *domain.Batch) Vars {
	v := ChurchVars(church)
	v["batchName"] = batch.Name
	v["countDate"] = batch.CountDate.Format(dateLayout)
	v["totalAmount"] = domain.FormatCents(batch.TotalCents)
	v["cashAmount"] = domain.FormatCents(batch.CashCents)
	v["checkAmount"] = domain.FormatCents(batch.CheckCents)
	v["donationCount"] = strconv.Itoa(batch.DonationCount)
	v["primaryAttestor"] = batch.Primary.Name
	v["secondaryAttestor"] = batch.Secondary.Name
	return v
}

// SampleVars fills every placeholder for template previews.
func SampleVars(church *domain.Church) Vars {
	v := ChurchVars(church)
	if v["churchName"] == "" {
		v["churchName"] = "Grace Community Church"
	}
	v["donorName"] = "Jane Doe"
	v["firstName"] = "Jane"
	v["amount"] = "$125.00"
	v["donationDate"] = "October 4, 2026"
	v["donationType"] = "check"
	v["checkNumber"] = "1042"
	v["batchName"] = "Sunday Service - Oct 4, 2026"
	v["countDate"] = "October 4, 2026"
	v["totalAmount"] = "$3,450.00"
	v["cashAmount"] = "$1,200.00"
	v["checkAmount"] = "$2,250.00"
	v["donationCount"] = "27"
	v["primaryAttestor"] = "John Smith"
	v["secondaryAttestor"] = "Mary Jones"
	v["resetLink"] = "https://app.platesync.example/reset-password?token=sample"
	v["loginLink"] = "https://app.platesync.example/login"
	return v
}
