package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/fpang/dreamroom/internal/styles"
	"github.com/fpang/dreamroom/internal/vision"
)

func mustResolve(t *testing.T, id string) styles.RoomStyle {
	t.Helper()
	s, err := styles.Resolve(id, nil)
	if err != nil {
		t.Fatalf("Resolve(%s): %v", id, err)
	}
	return s
}

func TestBuildProducesThreeNumberedJobs(t *testing.T) {
	for _, s := range styles.Builtins() {
		jobs, err := Build(s, nil, nil)
		if err != nil {
			t.Fatalf("Build(%s): %v", s.ID, err)
		}
		if len(jobs) != BatchSize {
			t.Fatalf("Build(%s) = %d jobs, want %d", s.ID, len(jobs), BatchSize)
		}
		seen := map[int]bool{}
		for _, j := range jobs {
			if j.PositivePrompt == "" || j.NegativePrompt == "" {
				t.Errorf("style %s job %d has empty prompt", s.ID, j.SequenceNumber)
			}
			if seen[j.SequenceNumber] {
				t.Errorf("style %s repeats sequence number %d", s.ID, j.SequenceNumber)
			}
			seen[j.SequenceNumber] = true
		}
		for n := 1; n <= BatchSize; n++ {
			if !seen[n] {
				t.Errorf("style %s missing sequence number %d", s.ID, n)
			}
		}
	}
}

func TestBuildCozyCabinPrompts(t *testing.T) {
	s := mustResolve(t, "cozy-cabin")
	jobs, err := Build(s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, j := range jobs {
		if !strings.Contains(j.PositivePrompt, "cozy cabin bedroom") {
			t.Errorf("job %d missing base fragment: %q", j.SequenceNumber, j.PositivePrompt)
		}
		if !strings.Contains(j.PositivePrompt, s.Variations[i]) {
			t.Errorf("job %d missing variation %q", j.SequenceNumber, s.Variations[i])
		}
	}
}

func TestBuildMoodAppearsInEveryPrompt(t *testing.T) {
	s := mustResolve(t, "modern-luxury")
	jobs, err := Build(s, nil, &Customizations{Mood: "serene"})
	if err != nil {
		t.Fatal(err)
	}
	for _, j := range jobs {
		if !strings.Contains(j.PositivePrompt, "serene") {
			t.Errorf("job %d missing mood: %q", j.SequenceNumber, j.PositivePrompt)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	s := mustResolve(t, "vintage-romantic")
	custom := &Customizations{ColorPalette: "dusty rose", AdditionalDetails: "lots of candles"}
	a, err := Build(s, nil, custom)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(s, nil, custom)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("job %d differs across identical builds", i+1)
		}
	}
}

func TestBuildWithFeatures(t *testing.T) {
	s := mustResolve(t, "minimalist-zen")
	f := &vision.Features{
		DominantColors: []string{"natural green"},
		Brightness:     vision.BrightnessBright,
		Lighting:       "bright airy",
		Style:          "natural organic",
	}
	jobs, err := Build(s, f, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := jobs[0].PositivePrompt
	for _, want := range []string{
		"incorporating natural green color tones",
		"bright airy lighting atmosphere",
		"maintaining natural organic aesthetic elements",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing feature clause %q", want)
		}
	}
}

func TestBuildInsufficientVariations(t *testing.T) {
	s := styles.RoomStyle{
		ID:         "thin",
		BasePrompt: "something",
		Variations: []string{"only", "two"},
	}
	_, err := Build(s, nil, nil)
	if !errors.Is(err, ErrInsufficientVariations) {
		t.Errorf("Build = %v, want ErrInsufficientVariations", err)
	}
}

func TestBuildVarietyRotation(t *testing.T) {
	s := mustResolve(t, "tropical-paradise")
	jobs, err := Build(s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Each job gets a different rotation slot, so no two positive prompts
	// should be identical even for a style with repeated variation text.
	if jobs[0].PositivePrompt == jobs[1].PositivePrompt || jobs[1].PositivePrompt == jobs[2].PositivePrompt {
		t.Error("variety rotation did not differentiate prompts")
	}
	if !strings.Contains(jobs[0].PositivePrompt, "golden hour lighting") {
		t.Errorf("job 1 missing first rotation slot: %q", jobs[0].PositivePrompt)
	}
	if !strings.Contains(jobs[1].PositivePrompt, "panoramic view") {
		t.Errorf("job 2 missing second rotation slot")
	}
}
