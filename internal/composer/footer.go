package composer

import (
	"fmt"
	"strings"

	"github.com/ignite/outreach/internal/domain"
)

const disclaimerHTML = `<p style="font-style: italic; font-size: 11px; color: #999; margin-top: 12px; line-height: 1.4;">
    This email is confidential and intended solely for the recipient.
  </p>`

// renderFooter builds the signature block. Fields render in fixed order
// name, designation, company, contact, skipping blanks; the name line is
// bold. When every field is blank and the disclaimer is off, no footer
// element is emitted at all.
func renderFooter(f domain.Footer) string {
	if f.IsEmpty() {
		return ""
	}

	var lines []string
	if name := strings.TrimSpace(f.Name); name != "" {
		lines = append(lines, "<strong>"+name+"</strong>")
	}
	for _, field := range []string{f.Designation, f.Company, f.Contact} {
		if v := strings.TrimSpace(field); v != "" {
			lines = append(lines, v)
		}
	}

	var signature string
	if len(lines) > 0 {
		var b strings.Builder
		b.WriteString(`<div style="margin-bottom: 12px;">
    <p style="margin: 0 0 4px 0;">Best regards,</p>
`)
		for _, line := range lines {
			fmt.Fprintf(&b, "    <div style=\"margin: 0;\">%s</div>\n", line)
		}
		b.WriteString("  </div>")
		signature = b.String()
	}

	var disclaimer string
	if f.Disclaimer {
		disclaimer = disclaimerHTML
	}

	return fmt.Sprintf(`<footer style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0; font-size: 13px; color: #555; font-family: Arial, sans-serif;">
  %s
  %s
</footer>`, signature, disclaimer)
}
