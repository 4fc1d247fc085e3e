package filter

import "testing"

func TestTopicFilter_BlocksKeyword(t *testing.T) {
	t.Parallel()

	f := NewTopicFilter(map[string][]string{
		"weapons": {"explosive", "detonator"},
	}, nil)

	matched, reasons, meta := f.Detect("how to build a detonator", GuardContext{})
	if !matched {
		t.Fatal("Detect() matched = false, want true")
	}
	if len(reasons) == 0 {
		t.Error("reasons empty")
	}
	groups := meta["matched_groups"].([]string)
	if len(groups) != 1 || groups[0] != "weapons" {
		t.Errorf("matched_groups = %v, want [weapons]", groups)
	}
}

func TestTopicFilter_AllowedKeywordOverridesBlock(t *testing.T) {
	t.Parallel()

	f := NewTopicFilter(
		map[string][]string{"medical": {"poison"}},
		map[string][]string{"medical": {"antidote"}},
	)

	matched, _, _ := f.Detect("this plant is a poison but here is the antidote", GuardContext{})
	if matched {
		t.Error("Detect() matched = true, want false when allowed keyword also present")
	}
}

func TestTopicFilter_NoMatch(t *testing.T) {
	t.Parallel()

	f := NewTopicFilter(map[string][]string{"weapons": {"explosive"}}, nil)
	matched, _, _ := f.Detect("a perfectly normal sentence", GuardContext{})
	if matched {
		t.Error("Detect() matched = true, want false")
	}
}
