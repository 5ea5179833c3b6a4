package repository

import (
	"testing"

	"lms-api/internal/domain"
)

func TestFieldSet_Excludes(t *testing.T) {
	set := NewFieldSet("a", "b")
	if !set.Excludes("a") || !set.Excludes("b") {
		t.Fatalf("expected listed fields excluded")
	}
	if set.Excludes("c") {
		t.Fatalf("unlisted field must not be excluded")
	}

	var empty FieldSet
	if empty.Excludes("a") {
		t.Fatalf("nil set excludes nothing")
	}
}

func TestApplyCourseProjection_StripsPaidContent(t *testing.T) {
	course := domain.Course{
		ID: "c1",
		Sections: []domain.Section{
			{
				ID:         "s1",
				Title:      "Intro",
				VideoURL:   "https://videos/intro.mp4",
				Suggestion: "mira el demo primero",
				Links:      []domain.Link{{Title: "docs", URL: "https://go.dev"}},
				Questions:  []domain.Question{{ID: "q1", Question: "hola?"}},
			},
		},
	}

	applyCourseProjection(&course, PublicCourseFields)

	sec := course.Sections[0]
	if sec.VideoURL != "" || sec.Suggestion != "" || sec.Links != nil || sec.Questions != nil {
		t.Fatalf("expected paid fields stripped, got %+v", sec)
	}
	if sec.Title != "Intro" {
		t.Fatalf("public fields must survive projection")
	}
}

func TestApplyCourseProjection_NoSetIsNoOp(t *testing.T) {
	course := domain.Course{
		Sections: []domain.Section{{ID: "s1", VideoURL: "https://videos/a.mp4"}},
	}
	applyCourseProjection(&course, nil)
	if course.Sections[0].VideoURL == "" {
		t.Fatalf("nil projection must keep every field")
	}
}
