package vacancy

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/vacli/internal/models"
)

var highlight = strings.NewReplacer("<highlighttext>", "", "</highlighttext>", "")

// HeadHunter is a vacancy from api.hh.ru.
type HeadHunter struct {
	raw            models.RawRecord
	title          string
	area           string
	from, to       int
	hasFrom, hasTo bool
	currency       string
	url            string
	requirement    string
	responsibility string
	roles          string
	experience     string
	employment     string
}

func newHeadHunter(raw models.RawRecord) *HeadHunter {
	v := &HeadHunter{
		raw:            raw,
		title:          textOr(stringAt(raw, "name")),
		area:           textOr(stringAt(raw, "area", "name")),
		url:            textOr(stringAt(raw, "alternate_url")),
		requirement:    textOr(highlight.Replace(stringAt(raw, "snippet", "requirement"))),
		responsibility: textOr(highlight.Replace(stringAt(raw, "snippet", "responsibility"))),
		experience:     textOr(stringAt(raw, "experience", "name")),
		employment:     textOr(stringAt(raw, "employment", "name")),
	}
	if salary, ok := raw["salary"].(map[string]any); ok {
		v.from, v.hasFrom = boundAt(salary["from"])
		v.to, v.hasTo = boundAt(salary["to"])
		v.currency, _ = salary["currency"].(string)
	}
	if roles, ok := raw["professional_roles"].([]any); ok {
		names := make([]string, 0, len(roles))
		for _, role := range roles {
			if name := stringAt(role, "name"); name != "" {
				names = append(names, name)
			}
		}
		v.roles = strings.Join(names, ", ")
	}
	v.roles = textOr(v.roles)
	return v
}

func (v *HeadHunter) sealed() {}

func (v *HeadHunter) Provider() models.Provider { return models.ProviderHeadHunter }
func (v *HeadHunter) ID() string                { return idOf(v.raw) }
func (v *HeadHunter) Title() string             { return v.title }
func (v *HeadHunter) Area() string              { return v.area }
func (v *HeadHunter) SalaryFrom() (int, bool)   { return v.from, v.hasFrom }
func (v *HeadHunter) SalaryTo() (int, bool)     { return v.to, v.hasTo }
func (v *HeadHunter) URL() string               { return v.url }
func (v *HeadHunter) Requirement() string       { return v.requirement }
func (v *HeadHunter) Responsibility() string    { return v.responsibility }
func (v *HeadHunter) Experience() string        { return v.experience }
func (v *HeadHunter) Employment() string        { return v.employment }
func (v *HeadHunter) Raw() models.RawRecord     { return v.raw }

// Roles lists the professional roles the vacancy is filed under.
func (v *HeadHunter) Roles() string { return v.roles }

// Description is the professional role list; search results carry no
// full description.
func (v *HeadHunter) Description() string { return v.roles }

func (v *HeadHunter) MinSalary() int {
	return minSalary(v.from, v.hasFrom, v.to, v.hasTo)
}

func (v *HeadHunter) Currency() string {
	if (!v.hasFrom && !v.hasTo) || v.currency == "" {
		return NotSpecified
	}
	return v.currency
}

// SuperJob is a vacancy from api.superjob.ru.
type SuperJob struct {
	raw            models.RawRecord
	title          string
	area           string
	from, to       int
	hasFrom, hasTo bool
	currency       string
	url            string
	requirement    string
	responsibility string
	description    string
	experience     string
	employment     string
}

func newSuperJob(raw models.RawRecord) *SuperJob {
	v := &SuperJob{
		raw:            raw,
		title:          textOr(stringAt(raw, "profession")),
		area:           textOr(stringAt(raw, "town", "title")),
		url:            textOr(stringAt(raw, "link")),
		requirement:    textOr(collapseBlankLines(stringAt(raw, "candidat"))),
		responsibility: textOr(collapseBlankLines(stringAt(raw, "work"))),
		description:    textOr(richText(stringAt(raw, "vacancyRichText"))),
		experience:     textOr(stringAt(raw, "experience", "title")),
		employment:     textOr(stringAt(raw, "type_of_work", "title")),
	}
	v.from, v.hasFrom = boundAt(raw["payment_from"])
	v.to, v.hasTo = boundAt(raw["payment_to"])
	v.currency, _ = raw["currency"].(string)
	return v
}

func (v *SuperJob) sealed() {}

func (v *SuperJob) Provider() models.Provider { return models.ProviderSuperJob }
func (v *SuperJob) ID() string                { return idOf(v.raw) }
func (v *SuperJob) Title() string             { return v.title }
func (v *SuperJob) Area() string              { return v.area }
func (v *SuperJob) SalaryFrom() (int, bool)   { return v.from, v.hasFrom }
func (v *SuperJob) SalaryTo() (int, bool)     { return v.to, v.hasTo }
func (v *SuperJob) URL() string               { return v.url }
func (v *SuperJob) Requirement() string       { return v.requirement }
func (v *SuperJob) Responsibility() string    { return v.responsibility }
func (v *SuperJob) Description() string       { return v.description }
func (v *SuperJob) Experience() string        { return v.experience }
func (v *SuperJob) Employment() string        { return v.employment }
func (v *SuperJob) Raw() models.RawRecord     { return v.raw }

func (v *SuperJob) MinSalary() int {
	return minSalary(v.from, v.hasFrom, v.to, v.hasTo)
}

func (v *SuperJob) Currency() string {
	if (!v.hasFrom && !v.hasTo) || v.currency == "" {
		return NotSpecified
	}
	return v.currency
}

func collapseBlankLines(value string) string {
	for strings.Contains(value, "\n\n") {
		value = strings.ReplaceAll(value, "\n\n", "\n")
	}
	return value
}

// richText reduces the HTML description to plain lines.
func richText(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return ""
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
