package filter

import "testing"

func TestPIIFilter_DetectsSSN(t *testing.T) {
	t.Parallel()

	f := NewPIIFilter()
	matched, reasons, meta := f.Detect("my ssn is 123-45-6789", GuardContext{})
	if !matched {
		t.Fatal("Detect() matched = false, want true")
	}
	if len(reasons) == 0 {
		t.Error("Detect() reasons empty")
	}
	if meta["match_count"].(int) < 1 {
		t.Errorf("match_count = %v, want >= 1", meta["match_count"])
	}
}

func TestPIIFilter_InvalidSSNPrefixDiscountsConfidence(t *testing.T) {
	t.Parallel()

	f := NewPIIFilter()
	matches := f.scan("000-45-6789 and 666-45-6789 and 912-45-6789 and 555-45-6789")
	for _, m := range matches {
		if m.Kind != piiSSN {
			continue
		}
		wantLow := m.Text[:3] == "000" || m.Text[:3] == "666" || m.Text[0] == '9'
		if wantLow && m.Confidence != 0.5 {
			t.Errorf("Confidence(%s) = %v, want 0.5", m.Text, m.Confidence)
		}
		if !wantLow && m.Confidence != 1.0 {
			t.Errorf("Confidence(%s) = %v, want 1.0", m.Text, m.Confidence)
		}
	}
}

func TestPIIFilter_NoMatch(t *testing.T) {
	t.Parallel()

	f := NewPIIFilter()
	matched, _, _ := f.Detect("nothing sensitive here", GuardContext{})
	if matched {
		t.Error("Detect() matched = true, want false")
	}
}

func TestPIIFilter_ModifyRedactsSameLength(t *testing.T) {
	t.Parallel()

	f := NewPIIFilter()
	content := "ssn: 123-45-6789 done"
	redacted, err := f.Modify(content, GuardContext{})
	if err != nil {
		t.Fatalf("Modify() error: %v", err)
	}
	if len(redacted) != len(content) {
		t.Errorf("len(redacted) = %d, want %d (length-preserving redaction)", len(redacted), len(content))
	}
	if redacted == content {
		t.Error("Modify() did not change content")
	}
}

func TestPIIFilter_Checkpoint_ModifyAction(t *testing.T) {
	t.Parallel()

	cp := NewCheckpoint(NewPIIFilter(), ActionModify)
	v := cp.Check("email me at jane@example.com", GuardContext{})
	if v.Action != ActionModify {
		t.Fatalf("Action = %v, want %v", v.Action, ActionModify)
	}
	if !v.Modified {
		t.Error("Modified = false, want true")
	}
}
