package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-autofill/internal/types"
)

// maxDescriptionChars bounds the job description carried into the prompt.
const maxDescriptionChars = 6000

// jobContentSelectors locate the posting body on common job boards, most
// specific first.
var jobContentSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// ExtractJobPosting pulls the job title and description text surrounding the
// application form. Missing pieces come back as empty strings; the posting is
// context, not a requirement.
func ExtractJobPosting(doc *goquery.Document) types.JobPosting {
	posting := types.JobPosting{}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		posting.Title = strings.TrimSpace(og)
	}
	if posting.Title == "" {
		posting.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if posting.Title == "" {
		posting.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	for _, selector := range jobContentSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		body := sel.First().Clone()
		body.Find("nav, footer, header, script, style, noscript, form").Remove()
		text := cleanWhitespace(body.Text())
		if len(text) >= 80 {
			posting.Description = truncate(text, maxDescriptionChars)
			break
		}
	}

	return posting
}

// cleanWhitespace normalizes whitespace, keeping line structure.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
