package normalize

import (
	"fmt"

	"sbtalks/internal/core"
	"sbtalks/internal/tabular"
)

// CRMColumns names the columns of the CRM client export.
type CRMColumns struct {
	Email    string
	AltEmail string // preferred when present; some exports carry both
	Zip      string
	Center   string
}

// DefaultCRMColumns matches the CRM export layout.
func DefaultCRMColumns() CRMColumns {
	return CRMColumns{
		Email:    "Email",
		AltEmail: "Email Address",
		Zip:      "Physical Address ZIP Code",
		Center:   "Center",
	}
}

// CRM normalizes the client export into the snapshot the Matcher reads.
// A CRM row without a usable email cannot participate in matching and is
// reported as malformed.
func CRM(rows []tabular.Row, cols CRMColumns) ([]core.CRMClient, []RowIssue) {
	var (
		clients   []core.CRMClient
		malformed []RowIssue
	)
	seen := make(map[string]bool)

	for i, row := range rows {
		email := CleanEmail(row[cols.AltEmail])
		if email == "" {
			email = CleanEmail(row[cols.Email])
		}
		if email == "" || !ValidEmail(email) {
			malformed = append(malformed, RowIssue{
				Line:   i + 1,
				Reason: fmt.Sprintf("crm row has no usable email (%q)", row[cols.Email]),
			})
			continue
		}
		if seen[email] {
			continue
		}
		seen[email] = true

		zip, _ := CleanZip(row[cols.Zip])
		clients = append(clients, core.CRMClient{
			Email:  email,
			Zip:    zip,
			Center: CleanName(row[cols.Center]),
		})
	}

	return clients, malformed
}
