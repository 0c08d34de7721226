package templates

var defaultTags = []string{"quiz", "trivia", "general knowledge", "brain teaser", "fun"}

var defaultStudio = Set{
	Titles: []string{
		"Can You Pass This Quiz? {{.Questions}} Questions",
		"Only 1% Can Answer All {{.Questions}} Questions",
		"Test Your Brain: {{.Questions}} Hard Questions",
		"IQ Test: {{.Questions}} Questions Only Geniuses Solve",
		"{{.Questions}} Quiz Questions That Will Blow Your Mind",
		"How Smart Are You? {{.Questions}} Question Challenge",
		"Brain Teaser: {{.Questions}} Questions to Test Your Knowledge",
		"Ultimate Quiz Challenge: {{.Questions}} Questions",
		"Are You Smarter Than Average? {{.Questions}} Questions",
		"Trivia Master: {{.Questions}} Question Challenge",
	},
	Description: "🧠 {{.Questions}} Question Quiz - Can you get them all right?\n\n" +
		"👆 Subscribe for daily quizzes!\n" +
		"💬 Comment your score below!\n\n" +
		"{{.Hashtags}}",
	Hashtags: "#quiz #trivia #generalknowledge #brainteaser #iqtest",
	Tags:     defaultTags,
}

var defaultDaypart = map[string]Set{
	"easy": {
		Titles: []string{
			"EASY Quiz - Can You Score {{.Score}}/{{.Total}}? 🟢",
			"Beginner Trivia - Everyone Should Know This! ✅",
			"Easy Mode Quiz - Perfect Score Challenge! 🌟",
		},
		Description: daypartDescription,
		Hashtags:    "#quiz #trivia #brainteaser #challenge",
		Tags:        defaultTags,
	},
	"medium": {
		Titles: []string{
			"Medium Quiz - Test Your Knowledge! 🟡",
			"Can You Handle This Quiz? 🤔",
			"Average Brain vs This Quiz! 🧠",
		},
		Description: daypartDescription,
		Hashtags:    "#quiz #trivia #brainteaser #challenge",
		Tags:        defaultTags,
	},
	"hard": {
		Titles: []string{
			"IMPOSSIBLE Quiz - Only Geniuses Pass! 🔴",
			"HARD MODE - 99% Will Fail! 😱",
			"Expert Only Quiz - Are You Smart Enough? 💀",
			"This Quiz Will Break Your Brain! 🤯",
		},
		Description: daypartDescription,
		Hashtags:    "#quiz #trivia #brainteaser #challenge",
		Tags:        defaultTags,
	},
}

const daypartDescription = "🧠 Test your brain with {{.Questions}} quick trivia questions!\n\n" +
	"Comment your score below! 👇\n" +
	"Can you beat it? Challenge your friends!\n\n" +
	"{{.Hashtags}}\n\n" +
	"Subscribe for daily quizzes! 🔔"

// Default returns the built-in template library.
func Default() *Library {
	lib := &Library{}
	applyDefaults(lib)
	return lib
}

func applyDefaults(lib *Library) {
	fillSet(&lib.Studio, defaultStudio)

	if lib.Daypart == nil {
		lib.Daypart = make(map[string]Set, len(defaultDaypart))
	}
	for name, def := range defaultDaypart {
		set := lib.Daypart[name]
		fillSet(&set, def)
		lib.Daypart[name] = set
	}
}

func fillSet(set *Set, def Set) {
	if len(set.Titles) == 0 {
		set.Titles = def.Titles
	}
	if set.Description == "" {
		set.Description = def.Description
	}
	if set.Hashtags == "" {
		set.Hashtags = def.Hashtags
	}
	if len(set.Tags) == 0 {
		set.Tags = def.Tags
	}
}
