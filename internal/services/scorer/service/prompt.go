package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/catalog"
)

// contextFields are flattened first, in this order; other metadata keys follow sorted
var contextFields = []string{
	"jurisdiction",
	"counterparty_jurisdiction",
	"channel",
	"kyc_status",
	"kyc_last_review",
	"edd_required",
	"edd_completed",
	"pep_flag",
	"sanctions_screening",
	"adverse_media",
	"swift_originator",
	"swift_beneficiary",
	"swift_purpose",
	"declared_purpose",
	"fx_pair",
	"fx_rate",
	"fx_market_rate",
	"recent_txn_count",
	"recent_txn_total",
	"hold_period_hours",
}

// fieldGuidance tells the model how a context field maps onto catalog rules
var fieldGuidance = map[string]string{
	"amount":                    "amount >= 1,000,000 supports cash:large_amount; amounts just under a threshold with recent similar activity support cash:structuring",
	"sanctions_screening":       `"potential" maps to screening:sanctions_potential, "confirmed" to screening:sanctions_confirmed, "clear" to neither`,
	"pep_flag":                  "true maps to screening:pep",
	"adverse_media":             "true or a non-empty list maps to screening:adverse_media",
	"kyc_status":                `"expired" or an old kyc_last_review maps to kyc:expired, "incomplete" or "pending" to kyc:incomplete`,
	"edd_required":              "true with edd_completed false maps to kyc:edd_required",
	"swift_originator":          "empty or missing maps to swift:missing_originator",
	"swift_beneficiary":         "empty or missing maps to swift:missing_beneficiary",
	"swift_purpose":             "a purpose code inconsistent with declared_purpose maps to swift:purpose_mismatch",
	"fx_rate":                   "deviation above 3% from fx_market_rate maps to fx:off_market_rate",
	"fx_pair":                   "exotic or unrelated currency pairs map to fx:unusual_pair",
	"jurisdiction":              "FATF high risk or grey list jurisdictions map to geo:high_risk_jurisdiction",
	"counterparty_jurisdiction": "same as jurisdiction",
	"hold_period_hours":         "funds moved out within 48 hours support cash:rapid_movement",
}

const outputSchema = `{"rule_hits":[{"rule_id":"<catalog id>","rationale":"<= 220 chars","weight":<0.05..0.5>}],"score":<0..1>}`

// systemPrompt is the fixed instruction block carrying the catalog and the output schema
func systemPrompt(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("You are an anti-money-laundering transaction monitoring analyst.\n")
	b.WriteString("Evaluate the transaction against the rule catalog below and reply with ONE JSON object and nothing else.\n\n")
	b.WriteString("Rule catalog (only these ids are allowed):\n")
	for _, r := range cat.Rules {
		fmt.Fprintf(&b, "- %s [%s, default weight %.2f]: %s\n", r.ID, r.Category, r.DefaultWeight, r.Description)
	}
	b.WriteString("\nOutput schema:\n")
	b.WriteString(outputSchema)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- include a hit only when the transaction context supports it\n")
	b.WriteString("- weight is your confidence-adjusted contribution, between 0.05 and 0.5\n")
	b.WriteString("- score is the overall risk in [0,1]; it should reflect the combined weights\n")
	b.WriteString("- rationale cites the context fields used, at most 220 characters\n")
	return b.String()
}

// userPrompt flattens the transaction into labelled lines plus per field guidance
func userPrompt(tx aml.Transaction) string {
	var b strings.Builder
	b.WriteString("Transaction context:\n")
	fmt.Fprintf(&b, "- transaction_id: %s\n", tx.ID)
	fmt.Fprintf(&b, "- amount: %s\n", strconv.FormatFloat(tx.Amount, 'f', -1, 64))
	fmt.Fprintf(&b, "- currency: %s\n", tx.Currency)
	fmt.Fprintf(&b, "- customer_id: %s\n", tx.CustomerID)

	used := map[string]bool{}
	for _, k := range contextFields {
		if v, ok := tx.Metadata[k]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", k, render(v))
			used[k] = true
		}
	}
	rest := make([]string, 0, len(tx.Metadata))
	for k := range tx.Metadata {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fmt.Fprintf(&b, "- %s: %s\n", k, render(tx.Metadata[k]))
	}

	b.WriteString("\nField guidance:\n")
	keys := make([]string, 0, len(fieldGuidance))
	for k := range fieldGuidance {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, fieldGuidance[k])
	}
	return b.String()
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "(missing)"
	case string:
		if strings.TrimSpace(x) == "" {
			return "(empty)"
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
