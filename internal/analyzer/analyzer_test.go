package analyzer

import "testing"

func TestAnalyzeCleanVideo(t *testing.T) {
	r := Analyze(Metadata{
		Title:       "My Family Vacation",
		Description: "Fun times at the beach",
		Filename:    "vacation.mp4",
	}, DefaultConfig())

	if r.Score != 0 {
		t.Fatalf("score = %d, want 0", r.Score)
	}
	if r.Verdict != "safe" {
		t.Fatalf("verdict = %q, want safe", r.Verdict)
	}
	if len(r.CategoryBreakdown) != 0 {
		t.Fatalf("categoryBreakdown = %v, want empty", r.CategoryBreakdown)
	}
	if len(r.Rules) != 1 || r.Rules[0] != "Passed all content checks" {
		t.Fatalf("rules = %v", r.Rules)
	}
}

func TestAnalyzeFlaggedMultiCategory(t *testing.T) {
	r := Analyze(Metadata{
		Title:       "adult violence content",
		Description: "",
		Filename:    "x.mp4",
	}, DefaultConfig())

	if r.Score != 84 {
		t.Fatalf("score = %d, want 84", r.Score)
	}
	if r.Verdict != "flagged" {
		t.Fatalf("verdict = %q, want flagged", r.Verdict)
	}
	if len(r.DetectedIssues) != 2 {
		t.Fatalf("detectedIssues = %v, want 2 entries", r.DetectedIssues)
	}
	want := "Category keyword matches detected, no pattern rules triggered"
	if len(r.Rules) != 1 || r.Rules[0] != want {
		t.Fatalf("rules = %v, want [%q]", r.Rules, want)
	}
}

func TestAnalyzePatternSpamBoundary(t *testing.T) {
	r := Analyze(Metadata{
		Title:       "WOW !!!!! 123456 aaaaaa buy now",
		Description: "",
		Filename:    "x.mp4",
	}, DefaultConfig())

	if r.Score != 15 {
		t.Fatalf("score = %d, want 15 (only repeated-char should fire)", r.Score)
	}
	if r.Verdict != "safe" {
		t.Fatalf("verdict = %q, want safe", r.Verdict)
	}
	want := []string{"Repeated characters detected (spam pattern)"}
	if len(r.Rules) != 1 || r.Rules[0] != want[0] {
		t.Fatalf("rules = %v, want %v", r.Rules, want)
	}
}

func TestAnalyzeThresholdIsStrictlyGreaterThan(t *testing.T) {
	// "clickbait" is spam-only (weight 20); a single description occurrence
	// scores exactly 20, at or under the default threshold of 30.
	safe := Analyze(Metadata{Title: "", Description: "pure clickbait", Filename: "x.mp4"}, DefaultConfig())
	if safe.Score != 20 || safe.Verdict != "safe" {
		t.Fatalf("got score=%d verdict=%s, want 20/safe", safe.Score, safe.Verdict)
	}
	wantRule := "Category keyword matches detected, no pattern rules triggered"
	if len(safe.Rules) != 1 || safe.Rules[0] != wantRule {
		t.Fatalf("rules = %v, want [%q]", safe.Rules, wantRule)
	}

	// A single description-only "kill" (violence weight 30) scores exactly
	// the threshold, which is not enough to flag.
	boundary := Analyze(Metadata{Description: "kill", Filename: "x.mp4"}, DefaultConfig())
	if boundary.Score != 30 || boundary.Verdict != "safe" {
		t.Fatalf("got score=%d verdict=%s, want 30/safe", boundary.Score, boundary.Verdict)
	}

	// Two spam-only keywords in the title (1.2x weight each) push the score
	// past the strict threshold.
	flagged := Analyze(Metadata{Title: "clickbait fake", Description: "", Filename: "x.mp4"}, DefaultConfig())
	if flagged.Score <= 30 || flagged.Verdict != "flagged" {
		t.Fatalf("got score=%d verdict=%s, want >30/flagged", flagged.Score, flagged.Verdict)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	m := Metadata{Title: "adult content", Description: "violence and hate", Filename: "clip.mkv"}
	a := Analyze(m, DefaultConfig())
	b := Analyze(m, DefaultConfig())
	if a.Score != b.Score || a.Verdict != b.Verdict || a.Summary != b.Summary {
		t.Fatalf("Analyze is not deterministic: %+v vs %+v", a, b)
	}
}

func TestAnalyzeASCIIOnlyLowercasing(t *testing.T) {
	r := Analyze(Metadata{Title: "ADULT", Description: "", Filename: ""}, DefaultConfig())
	if r.Score == 0 {
		t.Fatalf("expected ASCII-uppercase keyword to match, got score 0")
	}
}
