package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var emitted []int
	for done := 0; done <= 8; done++ {
		if s.ShouldLog(done, 8) {
			emitted = append(emitted, done)
		}
	}
	want := []int{0, 2, 4, 6, 8}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}
}

func TestProgressSamplerEdgeCases(t *testing.T) {
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler should always log")
	}
	nilSampler.Reset()

	s := NewProgressSampler(0)
	if s.bucketSize != 10 {
		t.Fatalf("expected default bucket size 10, got %v", s.bucketSize)
	}
	if s.ShouldLog(0, 0) {
		t.Fatal("empty batch should not log progress")
	}
	if !s.ShouldLog(5, 5) || s.ShouldLog(7, 5) {
		t.Fatal("completion should log once and clamp above 100%")
	}
	s.Reset()
	if !s.ShouldLog(5, 5) {
		t.Fatal("expected Reset to allow the bucket again")
	}
}
