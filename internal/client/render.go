package client

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/octobees/leadform/internal/entity"
)

var idnaProfile = idna.Lookup

// Card is a titled group of record fields.
type Card struct {
	Title  string
	Fields []string
}

// Cards is the layout used to display a company record.
var Cards = []Card{
	{Title: "General Info", Fields: []string{"name", "foundedYear", "industry", "location", "size", "website", "linkedin", "email", "phone"}},
	{Title: "Reviews & Ratings", Fields: []string{"rating", "reviewSource", "pros", "cons"}},
	{Title: "Services & References", Fields: []string{"services", "references"}},
	{Title: "Metadata", Fields: []string{"timestamp", "summary", "embedding"}},
}

var linkFields = map[string]bool{"website": true, "linkedin": true}

// SafeURL returns raw as an absolute http(s) URL, adding https:// when no scheme is given.
// Other schemes and unparsable input are rejected.
func SafeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(raw, ":") && !strings.Contains(strings.SplitN(raw, "/", 2)[0], ".") {
			return "", false
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", false
	}

	host, err := idnaProfile.ToASCII(u.Hostname())
	if err != nil {
		return "", false
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}

// FormatPhone renders raw in international format when it parses for region, otherwise unchanged.
func FormatPhone(raw, region string) string {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// Label turns a record field name such as foundedYear into "Founded Year".
func Label(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English, cases.NoLower).String(b.String())
}

// Render writes record as titled cards. Absent fields are skipped and links
// that are not http(s) are shown as "(invalid link)".
func Render(w io.Writer, record entity.CompanyRecord, phoneRegion string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, card := range Cards {
		if i > 0 {
			if _, err := fmt.Fprintln(tw); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(tw, "== %s ==\n", card.Title); err != nil {
			return err
		}
		for _, field := range card.Fields {
			value := record.Text(field)
			if value == "" {
				continue
			}
			switch {
			case linkFields[field]:
				if safe, ok := SafeURL(value); ok {
					value = safe
				} else {
					value = "(invalid link)"
				}
			case field == "phone":
				value = FormatPhone(value, phoneRegion)
			case field == "embedding":
				value = "[" + value + "]"
			}
			if _, err := fmt.Fprintf(tw, "%s:\t%s\n", Label(field), value); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
