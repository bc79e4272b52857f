package rustdoc

import (
	"regexp"
	"sort"
	"strings"
)

// cfgFeatureRe extracts feature names from the debug-printed cfg attribute
// form recent rustdoc emits, e.g.
//
//	#[attr = CfgTrace([NameValue { name: "feature", value: Some("auth"), span: None }])]
var cfgFeatureRe = regexp.MustCompile(`name: "feature", value: Some\("([^"]+)"\)`)

// FeatureRequirements reconstructs the feature gates an item requires from
// its raw attribute strings. When declared is non-empty, extracted names
// are cross-referenced against it so non-feature cfg values drop out.
// Output is sorted and deduplicated.
func FeatureRequirements(attrs []string, declared map[string]struct{}) []string {
	var features []string
	for _, attr := range attrs {
		for _, m := range cfgFeatureRe.FindAllStringSubmatch(attr, -1) {
			features = append(features, m[1])
		}
	}
	if len(declared) > 0 {
		kept := features[:0]
		for _, f := range features {
			if _, ok := declared[f]; ok {
				kept = append(kept, f)
			}
		}
		features = kept
	}
	if len(features) == 0 {
		return nil
	}
	sort.Strings(features)
	out := features[:1]
	for _, f := range features[1:] {
		if f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return out
}

// DocSummary returns the doc comment text up to its first sentence
// boundary: the first ". " or paragraph break, whichever comes first.
func DocSummary(docs string) string {
	docs = strings.TrimSpace(docs)
	if docs == "" {
		return ""
	}

	end := len(docs)
	if i := strings.Index(docs, ". "); i >= 0 {
		end = i + 1
	}
	if i := strings.Index(docs, ".\n"); i >= 0 && i+1 < end {
		end = i + 1
	}
	if i := strings.Index(docs, "\n\n"); i >= 0 && i < end {
		end = i
	}
	summary := strings.TrimSpace(docs[:end])
	return strings.Join(strings.Fields(summary), " ")
}
