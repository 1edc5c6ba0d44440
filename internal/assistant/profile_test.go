package assistant

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestApplyLevelGate(t *testing.T) {
	now := time.Now()

	p := &UserProfile{}
	p.Apply(AnalysisResult{UserLevel: LevelAdvanced, Confidence: 0.8}, 0.8, now)
	if p.DetectedLevel != "" {
		t.Errorf("confidence at the gate must not change the level, got %q", p.DetectedLevel)
	}

	p.Apply(AnalysisResult{UserLevel: LevelAdvanced, Confidence: 0.81}, 0.8, now)
	if p.DetectedLevel != LevelAdvanced {
		t.Errorf("DetectedLevel = %q, want advanced", p.DetectedLevel)
	}

	p.Apply(AnalysisResult{UserLevel: LevelBeginner, Confidence: 0.5}, 0.8, now)
	if p.DetectedLevel != LevelAdvanced {
		t.Errorf("low-confidence reading must not overwrite the level, got %q", p.DetectedLevel)
	}
}

func TestApplyInterestsBoundedAndDeduplicated(t *testing.T) {
	now := time.Now()
	p := &UserProfile{}

	for i := 1; i <= 12; i++ {
		p.Apply(AnalysisResult{Keywords: []string{fmt.Sprintf("tema%d", i)}}, 0.8, now)
	}
	if len(p.Interests) != maxInterests {
		t.Fatalf("Interests length = %d, want %d", len(p.Interests), maxInterests)
	}
	if p.Interests[0] != "tema3" || p.Interests[len(p.Interests)-1] != "tema12" {
		t.Errorf("oldest interests must be evicted first: %v", p.Interests)
	}

	// A repeated interest moves to the end without growing the list.
	p.Apply(AnalysisResult{Keywords: []string{"tema5"}}, 0.8, now)
	if len(p.Interests) != maxInterests {
		t.Errorf("repeat must not grow the list, got %d entries", len(p.Interests))
	}
	if p.Interests[len(p.Interests)-1] != "tema5" {
		t.Errorf("repeated interest must move to the end: %v", p.Interests)
	}
}

func TestApplyPreferredCategoriesBounded(t *testing.T) {
	now := time.Now()
	p := &UserProfile{}

	categories := []string{
		CategorySocial, CategoryProgramming, CategoryInstitutional,
		CategoryCourses, CategoryEnrollment, CategorySchedules, CategoryProjects,
	}
	for _, c := range categories {
		p.Apply(AnalysisResult{Category: c}, 0.8, now)
	}

	want := []string{CategoryInstitutional, CategoryCourses, CategoryEnrollment, CategorySchedules, CategoryProjects}
	if !reflect.DeepEqual(p.PreferredCategories, want) {
		t.Errorf("PreferredCategories = %v, want %v", p.PreferredCategories, want)
	}
}

func TestApplyCountsAndSentiment(t *testing.T) {
	now := time.Now()
	p := &UserProfile{}

	p.Apply(AnalysisResult{Sentiment: SentimentPositive}, 0.8, now)
	p.Apply(AnalysisResult{}, 0.8, now.Add(time.Minute))

	if p.InteractionCount != 2 {
		t.Errorf("InteractionCount = %d, want 2", p.InteractionCount)
	}
	if p.Sentiment != SentimentPositive {
		t.Errorf("empty sentiment must not clear the last one, got %q", p.Sentiment)
	}
	if !p.LastInteraction.Equal(now.Add(time.Minute)) {
		t.Errorf("LastInteraction = %v", p.LastInteraction)
	}
}

func TestApplyNormalizesInterests(t *testing.T) {
	p := &UserProfile{}
	p.Apply(AnalysisResult{Keywords: []string{"Programación", ""}}, 0.8, time.Now())
	if !reflect.DeepEqual(p.Interests, []string{"programacion"}) {
		t.Errorf("Interests = %v, want normalized single entry", p.Interests)
	}
}
