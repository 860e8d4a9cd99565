package github

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/amharic-dictionary/dictsync/internal/contribution"
)

// ContributionLabels tag every auto-created review issue.
var ContributionLabels = []string{"contribution", "word-definition", "new-entry"}

const issueBodyTemplate = `## New Amharic dictionary contribution

### Word details:
- **Amharic word**: {{.AmharicWord}}
- **Pronunciation**: {{.Pronunciation}}
- **Arabic translation**: {{.ArabicWord}}
- **Usage example**: {{if .UsageExample}}{{.UsageExample}}{{else}}not provided{{end}}
- **Category**: {{.Category}}
- **Level**: {{.Level}}

### Contributor information:
- **Contributor**: {{.Contributor}}
- **Date**: {{.Timestamp}}

### Review checklist:
- [ ] Verify the pronunciation
- [ ] Verify the translation
- [ ] Verify the usage example
- [ ] Verify the category
- [ ] Verify the difficulty level

---
*Created automatically by the Amharic dictionary application*
`

var issueBody = template.Must(template.New("issue").Parse(issueBodyTemplate))

// ContributionIssue renders the review issue for a contribution.
func ContributionIssue(c contribution.Contribution) (title, body string, labels []string, err error) {
	title = fmt.Sprintf("New word definition: %s", c.AmharicWord)

	var buf strings.Builder
	if err := issueBody.Execute(&buf, c); err != nil {
		return "", "", nil, fmt.Errorf("issueBody.Execute() > %w", err)
	}
	return title, buf.String(), ContributionLabels, nil
}
