package refine

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/dreamroom/internal/styles"
)

// themePatterns score the description against known visual themes. A theme's
// strength is its total keyword hit count.
var themePatterns = map[string]*regexp.Regexp{
	"nature":     regexp.MustCompile(`\b(forest|mountain|ocean|beach|garden|tree|flower|natural?|outdoor|wilderness|jungle|desert|lake|river)\b`),
	"luxury":     regexp.MustCompile(`\b(luxury|luxurious|elegant|sophisticated|premium|high-end|lavish|opulent|expensive|fancy|upscale)\b`),
	"cozy":       regexp.MustCompile(`\b(cozy|cosy|warm|comfortable|snug|homey|intimate|soft|gentle|welcoming|peaceful)\b`),
	"modern":     regexp.MustCompile(`\b(modern|contemporary|sleek|minimalist|clean|geometric|futuristic|high-tech|smart|digital)\b`),
	"vintage":    regexp.MustCompile(`\b(vintage|antique|classic|retro|old|traditional|historical|victorian|art\s*deco|rustic)\b`),
	"fantasy":    regexp.MustCompile(`\b(magic|magical|fantasy|fairy|mystical|enchanted|dragon|wizard|castle|medieval|ethereal|otherworldly)\b`),
	"space":      regexp.MustCompile(`\b(space|cosmic|galaxy|stars?|planet|universe|nebula|astronaut|spacecraft|alien|celestial)\b`),
	"industrial": regexp.MustCompile(`\b(industrial|concrete|metal|steel|factory|warehouse|urban|loft|exposed|raw|brutalist)\b`),
	"bohemian":   regexp.MustCompile(`\b(bohemian|boho|eclectic|artistic|colorful|creative|free[-\s]?spirit|hippie|gypsy|nomadic)\b`),
	"underwater": regexp.MustCompile(`\b(underwater|ocean|sea|coral|fish|marine|aquatic|submarine|depths|diving)\b`),
	"arctic":     regexp.MustCompile(`\b(arctic|ice|snow|frozen|glacier|polar|cold|winter|igloo|tundra)\b`),
	"tropical":   regexp.MustCompile(`\b(tropical|island|palm|coconut|bamboo|tiki|polynesian|caribbean|paradise|exotic)\b`),
}

var (
	colorPattern = regexp.MustCompile(`\b(red|blue|green|yellow|purple|pink|orange|black|white|gray|grey|brown|gold|silver|copper|bronze|turquoise|coral|lavender|emerald|ruby|sapphire)\b`)
	moodPattern  = regexp.MustCompile(`\b(peaceful|energetic|calming|exciting|mysterious|bright|dark|airy|intimate|spacious|cramped|open|closed|sunny|shadowy|vibrant|muted)\b`)
)

var nameTemplates = map[string][]string{
	"nature":     {"Natural Sanctuary", "Organic Haven", "Earth Retreat", "Wilderness Lodge"},
	"luxury":     {"Luxury Sanctuary", "Premium Suite", "Elite Quarters", "Opulent Chamber"},
	"cozy":       {"Cozy Haven", "Warm Hideaway", "Comfort Nook", "Snug Retreat"},
	"modern":     {"Modern Loft", "Contemporary Suite", "Sleek Chamber", "Minimalist Space"},
	"vintage":    {"Vintage Charm", "Classic Manor", "Timeless Suite", "Heritage Room"},
	"fantasy":    {"Fantasy Realm", "Magical Chamber", "Enchanted Quarters", "Mystical Haven"},
	"space":      {"Cosmic Chamber", "Stellar Suite", "Galaxy Room", "Celestial Space"},
	"industrial": {"Industrial Loft", "Urban Den", "Metro Suite", "Raw Space"},
	"bohemian":   {"Bohemian Haven", "Artistic Loft", "Creative Studio", "Eclectic Space"},
	"underwater": {"Underwater Sanctuary", "Ocean Depths", "Aquatic Chamber", "Marine Haven"},
	"arctic":     {"Arctic Lodge", "Ice Palace", "Frozen Sanctuary", "Polar Retreat"},
	"tropical":   {"Tropical Paradise", "Island Retreat", "Palm Haven", "Exotic Sanctuary"},
}

var fallbackNames = []string{"Custom Room", "Unique Space", "Personal Sanctuary"}

var themeDescriptions = map[string]string{
	"nature":     "Natural and organic atmosphere",
	"luxury":     "Sophisticated and luxurious comfort",
	"cozy":       "Warm and intimate setting",
	"modern":     "Clean contemporary design",
	"vintage":    "Classic timeless elegance",
	"fantasy":    "Magical and mystical ambiance",
	"space":      "Cosmic and otherworldly vibes",
	"industrial": "Urban industrial aesthetic",
	"bohemian":   "Artistic and creative expression",
	"underwater": "Serene aquatic environment",
	"arctic":     "Cool pristine atmosphere",
	"tropical":   "Warm island paradise vibes",
}

var themeBasePrompts = map[string]string{
	"nature":     "(natural room), ((organic materials)), ((earthy textures)), ((natural lighting)), ((woodland atmosphere))",
	"luxury":     "(luxury room), ((premium materials)), ((elegant finishes)), ((sophisticated lighting)), ((opulent atmosphere))",
	"cozy":       "(cozy room), ((warm materials)), ((soft textures)), ((gentle lighting)), ((intimate atmosphere))",
	"modern":     "(modern room), ((sleek materials)), ((clean lines)), ((contemporary lighting)), ((minimalist atmosphere))",
	"vintage":    "(vintage room), ((antique materials)), ((ornate details)), ((warm lighting)), ((classic atmosphere))",
	"fantasy":    "(fantasy room), ((magical materials)), ((mystical elements)), ((ethereal lighting)), ((enchanted atmosphere))",
	"space":      "(space room), ((futuristic materials)), ((cosmic elements)), ((stellar lighting)), ((otherworldly atmosphere))",
	"industrial": "(industrial room), ((raw materials)), ((exposed elements)), ((dramatic lighting)), ((urban atmosphere))",
	"bohemian":   "(bohemian room), ((eclectic materials)), ((artistic elements)), ((warm lighting)), ((creative atmosphere))",
	"underwater": "(underwater room), ((aquatic materials)), ((fluid elements)), ((blue lighting)), ((marine atmosphere))",
	"arctic":     "(arctic room), ((ice materials)), ((crystalline elements)), ((cool lighting)), ((frozen atmosphere))",
	"tropical":   "(tropical room), ((bamboo materials)), ((natural elements)), ((warm lighting)), ((paradise atmosphere))",
}

const fallbackBasePrompt = "(custom room), ((unique materials)), ((personal style)), ((ambient lighting))"

var themeVariations = map[string][]string{
	"nature": {
		"forest cabin with sunlight filtering through tall pine trees",
		"garden bedroom with flowering vines climbing the walls",
		"treehouse bedroom with rope bridges and chirping birds",
		"mountain lodge bedroom with stone fireplace and panoramic views",
		"jungle bedroom with exotic plants and morning mist",
	},
	"luxury": {
		"penthouse bedroom with floor-to-ceiling windows and city skyline",
		"luxury yacht master suite with ocean panorama",
		"five-star hotel suite with marble finishes and gold accents",
		"private villa bedroom with infinity pool views",
		"executive suite with leather furniture and crystal chandeliers",
	},
	"cozy": {
		"cottage bedroom with stone fireplace and handmade quilts",
		"attic bedroom with slanted windows and fairy lights",
		"cabin bedroom with fur rugs and exposed wooden beams",
		"reading nook bedroom with built-in bookshelves",
		"farmhouse bedroom with vintage furniture and floral patterns",
	},
	"underwater": {
		"submarine bedroom with porthole windows showing marine life",
		"underwater palace bedroom with coral reef gardens",
		"deep sea bedroom with bioluminescent creatures",
		"mermaid grotto bedroom with pearl decorations",
		"aquarium bedroom with schools of tropical fish",
	},
}

var themeEmojis = map[string]string{
	"nature":     "🌿",
	"luxury":     "💎",
	"cozy":       "🏠",
	"modern":     "🏢",
	"vintage":    "🕰️",
	"fantasy":    "🧚‍♀️",
	"space":      "🌌",
	"industrial": "🏭",
	"bohemian":   "🎨",
	"underwater": "🐠",
	"arctic":     "❄️",
	"tropical":   "🌺",
}

// Heuristic refines a description with keyword and theme matching alone. It
// is deterministic: the same input always yields the same style.
type Heuristic struct{}

// Refine analyzes the description and assembles a style from the dominant
// theme's templates.
func (Heuristic) Refine(ctx context.Context, input string) (*Style, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	a := analyze(input)
	name := pick(input, nameTemplates[a.primaryTheme], fallbackNames)

	log.Debug().
		Str("theme", a.primaryTheme).
		Str("name", name).
		Msg("Heuristic refinement complete")

	s := &Style{
		RoomStyle: styles.RoomStyle{
			ID:          slugify(name),
			Name:        name,
			Description: a.description(),
			BasePrompt:  a.basePrompt(),
			Variations:  a.variations(),
		},
		Emoji:   a.emoji(),
		Refined: true,
	}
	return s, nil
}

type analysis struct {
	input        string
	primaryTheme string
	colors       []string
	moods        []string
}

func analyze(input string) analysis {
	lower := strings.ToLower(input)

	type score struct {
		theme    string
		strength int
	}
	var scores []score
	for theme, re := range themePatterns {
		if hits := re.FindAllString(lower, -1); len(hits) > 0 {
			scores = append(scores, score{theme, len(hits)})
		}
	}
	// Stable order: strongest theme first, ties broken alphabetically so the
	// result does not depend on map iteration.
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].strength != scores[j].strength {
			return scores[i].strength > scores[j].strength
		}
		return scores[i].theme < scores[j].theme
	})

	a := analysis{
		input:  input,
		colors: colorPattern.FindAllString(lower, -1),
		moods:  moodPattern.FindAllString(lower, -1),
	}
	if len(scores) > 0 {
		a.primaryTheme = scores[0].theme
	}
	return a
}

func (a analysis) description() string {
	desc, ok := themeDescriptions[a.primaryTheme]
	if !ok {
		desc = "Unique custom atmosphere"
	}
	if len(a.moods) > 0 {
		picked := a.moods
		if len(picked) > 2 {
			picked = picked[:2]
		}
		desc += fmt.Sprintf(" with %s vibes", strings.Join(picked, " and "))
	}
	return desc
}

func (a analysis) basePrompt() string {
	prompt, ok := themeBasePrompts[a.primaryTheme]
	if !ok {
		prompt = fallbackBasePrompt
	}
	if len(a.colors) > 0 {
		picked := a.colors
		if len(picked) > 2 {
			picked = picked[:2]
		}
		prompt += fmt.Sprintf(", ((%s colors))", strings.Join(picked, " and "))
	}
	return prompt
}

func (a analysis) variations() []string {
	if v, ok := themeVariations[a.primaryTheme]; ok {
		return v
	}
	// Themes without a curated scene list still satisfy the batch-size
	// minimum with description-derived scenes.
	return []string{
		fmt.Sprintf("custom bedroom inspired by %s", a.input),
		"unique space reflecting personal style and preferences",
		"one-of-a-kind room with distinctive character and atmosphere",
	}
}

func (a analysis) emoji() string {
	if e, ok := themeEmojis[a.primaryTheme]; ok {
		return e
	}
	return "🏠"
}

// pick selects one of choices by hashing the input, so repeated refinements
// of the same description agree.
func pick(input string, choices, fallback []string) string {
	if len(choices) == 0 {
		choices = fallback
	}
	h := fnv.New32a()
	h.Write([]byte(input))
	return choices[int(h.Sum32())%len(choices)]
}
