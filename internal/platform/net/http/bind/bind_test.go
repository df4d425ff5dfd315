package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "sentinel/internal/platform/errors"
)

type scrapeBody struct {
	Regulators []string `json:"regulators,omitempty" validate:"omitempty,max=3,dive,regulator"`
	Limit      int      `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/regulatory/scrape", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON[scrapeBody](post(`{"regulators":["MAS","fca"],"limit":5}`))
	require.NoError(t, err)
	assert.Equal(t, scrapeBody{Regulators: []string{"MAS", "fca"}, Limit: 5}, got)

	cases := []struct {
		name, body string
		code       perr.ErrorCode
		field      string
		msg        string
	}{
		{"empty", ``, perr.ErrorCodeJSON, "", "empty body"},
		{"malformed", `{"regulators":`, perr.ErrorCodeJSON, "", "invalid JSON"},
		{"unknown field", `{"cursor":1}`, perr.ErrorCodeJSON, "", "unknown field"},
		{"trailing", `{} {}`, perr.ErrorCodeJSON, "", "trailing"},
		{"bad regulator", `{"regulators":["M A S"]}`, perr.ErrorCodeValidation, "regulators[0]", "regulator code"},
		{"too many", `{"regulators":["A1","B1","C1","D1"]}`, perr.ErrorCodeValidation, "regulators", "at most 3"},
		{"limit", `{"limit":5000}`, perr.ErrorCodeValidation, "limit", "at most 1000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON[scrapeBody](post(tc.body))
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, tc.code), err.Error())
			assert.Contains(t, err.Error(), tc.msg)
			if tc.field != "" {
				assert.Equal(t, tc.field, perr.WireFrom(err).Field)
			}
		})
	}
}

func TestParseJSONOptions(t *testing.T) {
	got, err := ParseJSON[scrapeBody](post(``), JSONOptions{AllowEmptyBody: true})
	require.NoError(t, err)
	assert.Equal(t, scrapeBody{}, got)

	_, err = ParseJSON[scrapeBody](post(`{"cursor":1}`), JSONOptions{DisallowUnknown: false})
	assert.NoError(t, err)

	_, err = ParseJSON[scrapeBody](post(`{"regulators":["MAS","FCA"]}`), JSONOptions{MaxBytes: 8})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeJSON))
}

func TestValidatorCheck(t *testing.T) {
	type monitor struct {
		Limit int `json:"limit" validate:"min=1"`
	}
	assert.NoError(t, Validator().Check(monitor{Limit: 2}))

	err := Validator().Check(monitor{})
	require.Error(t, err)
	assert.Equal(t, "limit", perr.WireFrom(err).Field)

	field, msg := Validator().First(nil)
	assert.Empty(t, field+msg)

	assert.True(t, perr.IsCode(Validator().Check(42), perr.ErrorCodeJSON), "non struct input is a misuse")
}
