package hangman

import "testing"

func TestMatchExactIgnoresCaseAndPunctuation(t *testing.T) {
	cases := []struct{ guess, target string }{
		{"write a haiku about the moon", "write a haiku about the moon"},
		{"Write a Haiku about the Moon!", "write a haiku about the moon"},
		{"  write   a haiku,  about the moon ", "write a haiku about the moon"},
	}
	for _, tc := range cases {
		got := Match(tc.guess, tc.target)
		if got.Type != MatchExact || got.Percentage != 100 {
			t.Errorf("Match(%q) = %+v, want exact 100", tc.guess, got)
		}
	}
}

func TestMatchNoOverlapIsIncorrect(t *testing.T) {
	got := Match("quantum chromodynamics overview", "write a haiku about the moon")
	if got.Type != MatchIncorrect || got.Percentage != 0 {
		t.Fatalf("Match = %+v, want incorrect 0", got)
	}
}

func TestMatchEmptyGuessIsIncorrect(t *testing.T) {
	if got := Match("", "write a haiku"); got.Type != MatchIncorrect {
		t.Fatalf("empty guess = %+v, want incorrect", got)
	}
	if got := Match("anything", ""); got.Type != MatchIncorrect {
		t.Fatalf("empty target = %+v, want incorrect", got)
	}
}

func TestMatchFullCoverageWithoutEqualityCapsBelowExact(t *testing.T) {
	// Every target word is hit through a stem, but the strings are not
	// literally equal.
	got := Match("dogs", "dog")
	if got.Type != MatchNear {
		t.Fatalf("stemmed full coverage = %+v, want near", got)
	}
	if got.Percentage != 99 {
		t.Fatalf("percentage = %d, want the 99 cap", got.Percentage)
	}
}

func TestMatchPartialBand(t *testing.T) {
	// 3 of 6 target words hit: 50%.
	got := Match("a haiku moon", "write a haiku about the moon")
	if got.Type != MatchPartial {
		t.Fatalf("half coverage = %+v, want partial", got)
	}
	if got.Percentage != 50 {
		t.Fatalf("percentage = %d, want 50", got.Percentage)
	}
}

func TestMatchSemanticBand(t *testing.T) {
	// "compose" only hits "write" through the equivalence table: a weak
	// 0.8 credit over 3 target words.
	got := Match("compose", "write a story")
	if got.Type != MatchSemantic {
		t.Fatalf("semantic-only hit = %+v, want semantic", got)
	}
	if got.Percentage != 27 {
		t.Fatalf("percentage = %d, want 27", got.Percentage)
	}
}

func TestMatchIsAsymmetric(t *testing.T) {
	forward := Match("haiku", "write a haiku about the moon and stars")
	backward := Match("write a haiku about the moon and stars", "haiku")
	if forward.Percentage >= backward.Percentage {
		t.Fatalf("coverage of a one-word target should dominate: %d vs %d",
			forward.Percentage, backward.Percentage)
	}
	if backward.Type != MatchNear {
		t.Fatalf("full target coverage = %+v, want near", backward)
	}
}

func TestStemCollapsesInflections(t *testing.T) {
	cases := []struct{ word, want string }{
		{"dogs", "dog"},
		{"making", "mak"},
		{"jumped", "jump"},
		{"quickly", "quick"},
		{"boxes", "box"},
		{"cat", "cat"}, // too short to strip "s"? no suffix anyway
		{"is", "is"},   // remainder would be too short
	}
	for _, tc := range cases {
		if got := stem(tc.word); got != tc.want {
			t.Errorf("stem(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}

func TestNormalizeStripsNoise(t *testing.T) {
	got := normalize("  Hello,   WORLD!! 42 ")
	if got != "hello world 42" {
		t.Fatalf("normalize = %q", got)
	}
}
