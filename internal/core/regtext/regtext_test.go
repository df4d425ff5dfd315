package regtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"iso", "This notice is Effective 2024-05-01 for all banks.", "2024-05-01", true},
		{"long form", "Effective 1 May 2024, banks must file reports.", "2024-05-01", true},
		{"ordinal long form", "takes effect (effective 3rd June 2025)", "2025-06-03", true},
		{"us long form", "effective September 15, 2024 the rule applies", "2024-09-15", true},
		{"month year", "The amendments are effective from July 2025.", "2025-07-01", true},
		{"iso beats long form", "effective 1 May 2024 (published 2024-04-02)", "2024-04-02", true},
		{"no date near effective", "An effective programme is essential." + strings.Repeat(" filler", 40) + " Dated 2024-05-01", "", false},
		{"no effective", "Published 2024-05-01.", "", false},
		{"invalid calendar date skipped", "effective 2024-02-30 or 2024-03-01", "2024-03-01", true},
		{"second occurrence", "effective controls matter." + strings.Repeat(" x", 120) + " effective 2023-01-09", "2023-01-09", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := EffectiveDate(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCriteria_NormativeFirst(t *testing.T) {
	text := "Introduction to the notice. Banks must screen all parties. " +
		"This is background.\n\nInstitutions shall retain records for five years. " +
		"Firms should ensure staff training! Payments are prohibited where sanctioned? " +
		"Obligations apply daily. It is required to report. Final sentence must be dropped."
	got := Criteria(text)
	require.Len(t, got, MaxNormative)
	assert.Equal(t, "Banks must screen all parties.", got[0])
	assert.Equal(t, "Institutions shall retain records for five years.", got[1])
	for _, s := range got {
		assert.True(t, IsNormative(s), s)
	}
}

func TestCriteria_FallbackToLeadingSentences(t *testing.T) {
	got := Criteria("One. Two here. Three now. Four later.")
	assert.Equal(t, []string{"One.", "Two here.", "Three now."}, got)
}

func TestSentences_ParagraphBreaks(t *testing.T) {
	got := Sentences("Heading without stop\n\nBody line one. Body\nline two.")
	assert.Equal(t, []string{"Heading without stop", "Body line one.", "Body line two."}, got)
}

func TestCleanAndSummary(t *testing.T) {
	in := "Ｎｏｔｉｃｅ­ 626\x00\x07 on   AML\n\n"
	assert.Equal(t, "Notice 626 on   AML\n\n", Clean(in))

	long := strings.Repeat("word ", 200)
	s := Summary(long, 400)
	assert.Len(t, []rune(s), 400)
	assert.NotContains(t, s, "  ")
	assert.Equal(t, "a b", Summary(" a \n\t b ", 400))
}

func TestIDs(t *testing.T) {
	assert.Equal(t, "mas-gov-sg-regulation-notices-notice-626", Slug("https://www.mas.gov.sg/regulation/notices/Notice-626?utm=x#top"))

	a := ProposalID("MAS", "https://www.mas.gov.sg/regulation/notices/notice-626")
	b := ProposalID("mas", "http://mas.gov.sg/regulation/notices/notice-626?ref=feed")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "mas-"))
	assert.Len(t, a, len("mas-")+16)
	assert.NotEqual(t, a, ProposalID("HKMA", "https://www.mas.gov.sg/regulation/notices/notice-626"))

	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
	assert.Len(t, ContentHash(""), 64)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
	assert.Equal(t, "", Truncate("hi", 0))
}
