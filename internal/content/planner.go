// Package content decides what a published video is called and how it is
// described. Policies are deliberately declarative (template sets) so the
// automation loop stays free of wording decisions.
package content

import (
	"fmt"
	"time"

	"quizcast/pkg/templates"
)

// Post is the publish-ready metadata for one video.
type Post struct {
	Title       string
	Description string
	Tags        []string
}

// Params describes the video being planned.
type Params struct {
	Questions int
	Shorts    bool
}

// Planner produces the metadata for iteration i of an n-iteration run.
// Implementations must be deterministic for a given iteration so runs are
// reproducible and testable.
type Planner interface {
	Plan(iteration, total int, params Params) (Post, error)
}

// New selects a planner by policy name. Known policies: "studio" (rotating
// general-knowledge titles, the default) and "daypart" (difficulty keyed to
// the hour of day).
func New(policy string, lib *templates.Library) (Planner, error) {
	switch policy {
	case "", "studio":
		return &StudioPlanner{lib: lib}, nil
	case "daypart":
		return &DaypartPlanner{lib: lib, now: time.Now}, nil
	default:
		return nil, fmt.Errorf("unknown content policy %q", policy)
	}
}

// StudioPlanner rotates through the studio title set by iteration index and
// tags vertical videos in the description hashtag block.
type StudioPlanner struct {
	lib *templates.Library
}

func NewStudioPlanner(lib *templates.Library) *StudioPlanner {
	return &StudioPlanner{lib: lib}
}

func (p *StudioPlanner) Plan(iteration, total int, params Params) (Post, error) {
	set := p.lib.Studio

	hashtags := set.Hashtags
	if params.Shorts {
		hashtags += " #shorts"
	}

	return assemble(set, iteration, templates.Params{
		Questions: params.Questions,
		Score:     params.Questions,
		Total:     params.Questions,
		Hashtags:  hashtags,
	})
}

// DaypartPlanner picks a difficulty-flavored set by hour: easy mornings,
// medium afternoons, hard evenings. Vertical videos get the " #shorts"
// suffix on the title itself, which is what the feed surfaces.
type DaypartPlanner struct {
	lib *templates.Library
	now func() time.Time
}

func NewDaypartPlanner(lib *templates.Library) *DaypartPlanner {
	return &DaypartPlanner{lib: lib, now: time.Now}
}

func (p *DaypartPlanner) Plan(iteration, total int, params Params) (Post, error) {
	set, ok := p.lib.Daypart[difficultyFor(p.now().Hour())]
	if !ok {
		set = p.lib.Studio
	}

	post, err := assemble(set, iteration, templates.Params{
		Questions: params.Questions,
		Score:     params.Questions,
		Total:     params.Questions,
		Hashtags:  set.Hashtags,
	})
	if err != nil {
		return Post{}, err
	}
	if params.Shorts {
		post.Title += " #shorts"
	}
	return post, nil
}

func difficultyFor(hour int) string {
	switch {
	case hour < 8:
		return "easy"
	case hour < 16:
		return "medium"
	default:
		return "hard"
	}
}

func assemble(set templates.Set, iteration int, tp templates.Params) (Post, error) {
	title, err := set.Title(iteration, tp)
	if err != nil {
		return Post{}, fmt.Errorf("render title: %w", err)
	}
	description, err := set.Describe(tp)
	if err != nil {
		return Post{}, fmt.Errorf("render description: %w", err)
	}
	return Post{Title: title, Description: description, Tags: set.Tags}, nil
}
