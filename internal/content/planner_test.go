package content

import (
	"strings"
	"testing"
	"time"

	"quizcast/pkg/templates"
)

func TestStudioPlannerRotation(t *testing.T) {
	planner := NewStudioPlanner(templates.Default())
	params := Params{Questions: 10}

	first, err := planner.Plan(1, 12, params)
	if err != nil {
		t.Fatalf("Plan(1) error = %v", err)
	}
	if first.Title != "Can You Pass This Quiz? 10 Questions" {
		t.Errorf("Plan(1) title = %q", first.Title)
	}

	second, err := planner.Plan(2, 12, params)
	if err != nil {
		t.Fatalf("Plan(2) error = %v", err)
	}
	if second.Title == first.Title {
		t.Error("Plan(2) title did not rotate")
	}

	wrapped, err := planner.Plan(11, 12, params)
	if err != nil {
		t.Fatalf("Plan(11) error = %v", err)
	}
	if wrapped.Title != first.Title {
		t.Errorf("Plan(11) title = %q, want wrap to %q", wrapped.Title, first.Title)
	}
}

func TestStudioPlannerShortsHashtag(t *testing.T) {
	planner := NewStudioPlanner(templates.Default())

	tests := []struct {
		name   string
		shorts bool
		want   bool
	}{
		{"landscape", false, false},
		{"vertical", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := planner.Plan(1, 1, Params{Questions: 5, Shorts: tt.shorts})
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if got := strings.Contains(post.Description, "#shorts"); got != tt.want {
				t.Errorf("description #shorts = %v, want %v", got, tt.want)
			}
			if strings.Contains(post.Title, "#shorts") {
				t.Error("studio policy must not tag the title")
			}
			if len(post.Tags) == 0 {
				t.Error("Plan() returned no tags")
			}
		})
	}
}

func TestDaypartPlannerDifficulty(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want string
	}{
		{"early morning", 6, "EASY"},
		{"afternoon", 12, "Medium"},
		{"evening", 20, "IMPOSSIBLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &DaypartPlanner{
				lib: templates.Default(),
				now: func() time.Time {
					return time.Date(2025, 3, 10, tt.hour, 0, 0, 0, time.UTC)
				},
			}

			post, err := planner.Plan(1, 4, Params{Questions: 5})
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if !strings.Contains(post.Title, tt.want) {
				t.Errorf("hour %d title = %q, want flavor %q", tt.hour, post.Title, tt.want)
			}
		})
	}
}

func TestDaypartPlannerShortsTitleSuffix(t *testing.T) {
	planner := &DaypartPlanner{
		lib: templates.Default(),
		now: func() time.Time { return time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC) },
	}

	post, err := planner.Plan(1, 1, Params{Questions: 5, Shorts: true})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !strings.HasSuffix(post.Title, " #shorts") {
		t.Errorf("title = %q, want #shorts suffix", post.Title)
	}
}

func TestNewPolicySelection(t *testing.T) {
	lib := templates.Default()

	if _, err := New("", lib); err != nil {
		t.Errorf("New(\"\") error = %v", err)
	}
	if _, err := New("daypart", lib); err != nil {
		t.Errorf("New(daypart) error = %v", err)
	}
	if _, err := New("freestyle", lib); err == nil {
		t.Error("New(freestyle) expected error")
	}
}
