package generation

import (
	"bytes"
	"context"
	"image/png"
	"testing"
)

func TestMockGenerateDeterministic(t *testing.T) {
	m := &MockGenerator{StepDelay: -1}
	req := Request{PositivePrompt: "cozy cabin bedroom"}

	a, err := m.Generate(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := m.Generate(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(a.Data, b.Data) {
		t.Error("identical prompts produced different placeholder bytes")
	}

	other, err := m.Generate(context.Background(), Request{PositivePrompt: "underwater palace"}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if bytes.Equal(a.Data, other.Data) {
		t.Error("distinct prompts produced identical placeholders")
	}
}

func TestMockGenerateRampAndImage(t *testing.T) {
	m := &MockGenerator{StepDelay: -1, Size: 64}
	var seen []int
	res, err := m.Generate(context.Background(), Request{PositivePrompt: "x"}, func(pct int) {
		seen = append(seen, pct)
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []int{20, 40, 60, 80, 100}
	if len(seen) != len(want) {
		t.Fatalf("progress steps = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, seen[i], want[i])
		}
	}

	img, err := png.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("placeholder is not a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("placeholder = %v, want 64x64", img.Bounds())
	}
}

func TestMockGenerateCancellation(t *testing.T) {
	m := &MockGenerator{StepDelay: DefaultMockStepDelay}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Generate(ctx, Request{PositivePrompt: "x"}, nil)
	if err == nil {
		t.Error("Generate with cancelled context succeeded, want error")
	}
}

func TestFallbackWithoutSessionUsesMock(t *testing.T) {
	f := NewFallback(nil, nil, &MockGenerator{StepDelay: -1, Size: 32})
	res, err := f.Generate(context.Background(), Request{PositivePrompt: "anything"}, nil)
	if err != nil {
		t.Fatalf("Generate without session: %v", err)
	}
	if len(res.Data) == 0 {
		t.Error("fallback produced no image data")
	}
}
