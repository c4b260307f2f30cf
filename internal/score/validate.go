package score

import (
	"fmt"
	"sort"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/prompt"
)

// requiredFields are the top-level keys every model response must carry.
var requiredFields = []string{
	"tool_name", "homepage", "publication_ids", "bio_subscores",
	"documentation_subscores", "confidence_score", "concise_description",
	"rationale",
}

// Validate checks response against the rules of the scoring JSON schema
// (exactly the required top-level fields, with their types, and
// confidence_score in [0, 1]), and additionally requires every A1-A5 and
// B1-B5 subscore key with a value in [0, 1]. It returns a list of
// human-readable error strings, empty when the response is valid.
// It never returns an error itself; callers feed the returned strings back
// into the next prompt attempt via prompt.Augment.
func Validate(response map[string]any) []string {
	var errs []string

	for _, field := range requiredFields {
		if _, ok := response[field]; !ok {
			errs = append(errs, fmt.Sprintf("missing required field %q", field))
		}
	}
	var extra []string
	for k := range response {
		if _, known := indexOf(requiredFields, k); !known {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		errs = append(errs, fmt.Sprintf("unexpected field %q", k))
	}
	if len(errs) > 0 {
		// Type checks below assume presence; bail out early so messages
		// stay focused on what is actually wrong.
		return errs
	}

	if _, ok := response["tool_name"].(string); !ok {
		errs = append(errs, "tool_name must be a string")
	}
	if _, ok := response["homepage"].(string); !ok {
		errs = append(errs, "homepage must be a string")
	}
	if _, ok := response["concise_description"].(string); !ok {
		errs = append(errs, "concise_description must be a string")
	}
	if _, ok := response["rationale"].(string); !ok {
		errs = append(errs, "rationale must be a string")
	}

	if ids, ok := response["publication_ids"].([]any); ok {
		for i, id := range ids {
			if _, ok := id.(string); !ok {
				errs = append(errs, fmt.Sprintf("publication_ids[%d] must be a string", i))
			}
		}
	} else {
		errs = append(errs, "publication_ids must be an array of strings")
	}

	errs = append(errs, validateSubscores("bio_subscores", response["bio_subscores"], prompt.BioKeys[:])...)
	errs = append(errs, validateSubscores("documentation_subscores", response["documentation_subscores"], prompt.DocKeys[:])...)

	if conf, ok := CoerceFloat(response["confidence_score"]); !ok {
		errs = append(errs, "confidence_score must be a number")
	} else if conf < 0 || conf > 1 {
		errs = append(errs, "confidence_score must be between 0 and 1")
	}

	return errs
}

func validateSubscores(field string, raw any, keys []string) []string {
	m, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s must be an object", field)}
	}
	var errs []string
	for _, k := range keys {
		v, present := m[k]
		if !present {
			errs = append(errs, fmt.Sprintf("%s missing key %q", field, k))
			continue
		}
		f, ok := CoerceFloat(v)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s.%s must be a number", field, k))
			continue
		}
		if f < 0 || f > 1 {
			errs = append(errs, fmt.Sprintf("%s.%s must be between 0 and 1", field, k))
		}
	}
	for k, v := range m {
		if _, isCanonical := indexOf(keys, k); isCanonical {
			continue
		}
		if _, ok := CoerceFloat(v); !ok {
			errs = append(errs, fmt.Sprintf("%s.%s (extra key) must be a number", field, k))
		}
	}
	return errs
}

func indexOf(list []string, v string) (int, bool) {
	for i, s := range list {
		if s == v {
			return i, true
		}
	}
	return -1, false
}
