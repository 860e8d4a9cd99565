package contribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContribution() Contribution {
	return Contribution{
		AmharicWord:   "ሰላም",
		Pronunciation: "selam",
		ArabicWord:    "سلام",
		UsageExample:  "ሰላም ነው?",
		Category:      "greetings",
		Level:         "beginner",
	}
}

func TestContribution_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Contribution)
		expectedField string
	}{
		{
			name:   "valid contribution",
			mutate: func(c *Contribution) {},
		},
		{
			name:   "usage example is optional",
			mutate: func(c *Contribution) { c.UsageExample = "" },
		},
		{
			name:          "missing amharic word",
			mutate:        func(c *Contribution) { c.AmharicWord = "" },
			expectedField: "amharic",
		},
		{
			name:          "missing pronunciation",
			mutate:        func(c *Contribution) { c.Pronunciation = "" },
			expectedField: "pronunciation",
		},
		{
			name:          "missing arabic translation",
			mutate:        func(c *Contribution) { c.ArabicWord = "" },
			expectedField: "arabic",
		},
		{
			name:          "missing category",
			mutate:        func(c *Contribution) { c.Category = "" },
			expectedField: "category",
		},
		{
			name:          "missing level",
			mutate:        func(c *Contribution) { c.Level = "" },
			expectedField: "level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContribution()
			tt.mutate(&c)

			err := c.Validate()
			if tt.expectedField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.expectedField, verr.Field)
		})
	}
}

func TestContribution_Stamp(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)

	c := validContribution().Stamp("abebe", now)
	assert.Equal(t, "abebe", c.Contributor)
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, "2025-03-14T09:26:53.589793238Z", c.Timestamp)

	anon := validContribution().Stamp("", now)
	assert.Equal(t, AnonymousContributor, anon.Contributor)
}

func TestContribution_SameIdentity(t *testing.T) {
	now := time.Now()
	a := validContribution().Stamp("abebe", now)
	b := validContribution().Stamp("abebe", now)
	c := validContribution().Stamp("sara", now)
	d := validContribution().Stamp("abebe", now.Add(time.Nanosecond))

	assert.True(t, a.SameIdentity(b))
	assert.False(t, a.SameIdentity(c))
	assert.False(t, a.SameIdentity(d))
}
