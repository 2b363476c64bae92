// Package news merges headlines from several sources into one deduplicated,
// per-ticker capped list and tags each headline with a catalyst category.
package news

import (
	"regexp"
	"strings"

	"github.com/ternarybob/gapper/internal/models"
)

// catalystRule is one row of the ordered classification table
type catalystRule struct {
	tag      models.CatalystTag
	keywords []string
	pattern  *regexp.Regexp
}

// catalystRules is scanned top to bottom and the first match wins.
//
// Ordering:
//   - BANKRUPTCY and REVERSE_SPLIT first, they override any other news of the day
//   - LEGAL before FDA so "jury trial" and "lawsuit" never read as clinical
//   - FDA and clinical terms before OFFERING and EARNINGS so "trial results"
//     and "topline data" are not read as quarterly results
//   - OFFERING before M&A so "offering to fund acquisition" is dilution first
//   - EARNINGS before DIVIDEND and BUYBACK, which are often announced together
//   - FILING last, since a form type is the least specific signal
var catalystRules = compileRules([]catalystRule{
	{tag: models.CatalystBankruptcy, keywords: []string{"CHAPTER 11", "CHAPTER 7", "BANKRUPTCY", "BANKRUPT", "INSOLVENCY", "RECEIVERSHIP", "WIND DOWN"}},
	{tag: models.CatalystReverseSplit, keywords: []string{"REVERSE SPLIT", "REVERSE STOCK SPLIT", "SHARE CONSOLIDATION"}},
	{tag: models.CatalystLegal, keywords: []string{"LAWSUIT", "CLASS ACTION", "JURY", "VERDICT", "LITIGATION", "SUES", "SUED", "SETTLEMENT", "SUBPOENA", "INVESTIGATION", "SEC CHARGES", "INJUNCTION", "PATENT INFRINGEMENT"}},
	{tag: models.CatalystFDA, keywords: []string{"FDA", "PDUFA", "CLINICAL", "PHASE 1", "PHASE 2", "PHASE 3", "PHASE I", "PHASE II", "PHASE III", "PHASE 1/2", "PHASE 2/3", "TRIAL", "TOPLINE", "TOP-LINE", "BLA", "NDA", "IND", "EMA", "BREAKTHROUGH THERAPY", "FAST TRACK", "ORPHAN DRUG", "PIVOTAL", "ENDPOINT", "PATIENTS", "DOSING", "DOSED"}},
	{tag: models.CatalystOffering, keywords: []string{"OFFERING", "PRIVATE PLACEMENT", "REGISTERED DIRECT", "ATM PROGRAM", "AT-THE-MARKET", "SHELF REGISTRATION", "WARRANTS", "DILUTION", "CONVERTIBLE NOTES", "S-1", "S-3", "F-1", "F-3", "424B"}},
	{tag: models.CatalystMergers, keywords: []string{"MERGER", "MERGE", "ACQUISITION", "ACQUIRE", "ACQUIRES", "ACQUIRED", "TAKEOVER", "TAKE-PRIVATE", "BUYOUT", "TENDER OFFER", "DEFINITIVE AGREEMENT", "BUSINESS COMBINATION", "SPAC", "M&A"}},
	{tag: models.CatalystEarnings, keywords: []string{"EARNINGS", "RESULTS", "REVENUE", "EPS", "GUIDANCE", "QUARTER", "FISCAL", "FIRST QUARTER", "Q1", "Q2", "Q3", "Q4", "FY", "PROFIT", "NET INCOME", "SALES"}},
	{tag: models.CatalystAnalyst, keywords: []string{"UPGRADE", "UPGRADES", "UPGRADED", "DOWNGRADE", "DOWNGRADES", "DOWNGRADED", "PRICE TARGET", "INITIATES COVERAGE", "INITIATED", "REITERATES", "OUTPERFORM", "OVERWEIGHT", "UNDERWEIGHT", "ANALYST"}},
	{tag: models.CatalystBuyback, keywords: []string{"BUYBACK", "BUY BACK", "REPURCHASE", "REPURCHASES"}},
	{tag: models.CatalystDividend, keywords: []string{"DIVIDEND", "DIVIDENDS", "SPECIAL DIVIDEND"}},
	{tag: models.CatalystPartnership, keywords: []string{"PARTNERSHIP", "PARTNERS WITH", "PARTNER", "COLLABORATION", "COLLABORATE", "JOINT VENTURE", "ALLIANCE", "TEAMS UP", "STRATEGIC AGREEMENT"}},
	{tag: models.CatalystContract, keywords: []string{"CONTRACT", "AWARDED", "AWARD", "PURCHASE ORDER", "SUPPLY AGREEMENT", "DEPARTMENT OF DEFENSE", "DOD"}},
	{tag: models.CatalystLicense, keywords: []string{"LICENSE", "LICENSING", "LICENSED", "ROYALTY", "PATENT", "PATENTS"}},
	{tag: models.CatalystListing, keywords: []string{"UPLISTING", "UPLIST", "LISTING", "DELIST", "DELISTING", "COMPLIANCE", "MINIMUM BID", "IPO", "DEBUT", "INDEX", "ADDED TO"}},
	{tag: models.CatalystFiling, keywords: []string{"8-K", "10-K", "10-Q", "6-K", "20-F", "13D", "13G", "SC 13D", "SC 13G", "FORM 4", "DEF 14A", "SEC FILING", "FILING", "FILES", "FILED"}},
})

func compileRules(rules []catalystRule) []catalystRule {
	for i := range rules {
		quoted := make([]string, 0, len(rules[i].keywords))
		for _, kw := range rules[i].keywords {
			quoted = append(quoted, regexp.QuoteMeta(kw))
		}
		// Keywords match whole words only, so "EPS" never matches "STEPS"
		rules[i].pattern = regexp.MustCompile(`(?:^|[^A-Z0-9])(?:` + strings.Join(quoted, "|") + `)(?:$|[^A-Z0-9])`)
	}
	return rules
}

// Classify returns the catalyst tag for a headline, or CatalystNone.
func Classify(headline string) models.CatalystTag {
	text := strings.Join(strings.Fields(strings.ToUpper(headline)), " ")
	if text == "" {
		return models.CatalystNone
	}
	for _, rule := range catalystRules {
		if rule.pattern.MatchString(text) {
			return rule.tag
		}
	}
	return models.CatalystNone
}
