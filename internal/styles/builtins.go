package styles

// builtins is the immutable built-in catalog. Order matters twice over: the
// catalog order drives display, and the first MinVariations entries of each
// Variations list are the ones a generation batch consumes.
var builtins = []RoomStyle{
	{
		ID:          "cozy-cabin",
		Name:        "Cozy Cabin",
		Description: "Rustic woodland retreat vibes",
		BasePrompt:  "cozy cabin bedroom with wooden beams and warm lighting, rustic interior design",
		Variations: []string{
			"forest treehouse with twinkling fairy lights nestled among ancient oak branches",
			"mountain lodge with crackling stone fireplace and panoramic alpine views",
			"lakeside cabin with floor-to-ceiling windows overlooking misty morning waters",
			"woodland cottage surrounded by wildflower gardens and singing birds",
			"rustic barn loft with exposed wooden beams and hay bales as seating",
			"cozy attic room with slanted roof windows revealing starry night sky",
			"log cabin with thick fur rugs and hand-knitted wool blankets",
			"forest clearing with canopy bed suspended under constellation of stars",
			"cabin porch with hanging daybed and glowing lanterns in twilight",
		},
	},
	{
		ID:          "modern-luxury",
		Name:        "Modern Luxury",
		Description: "Sleek contemporary elegance",
		BasePrompt:  "modern luxury bedroom with clean lines and premium finishes, contemporary interior design",
		Variations: []string{
			"penthouse bedroom with floor-to-ceiling windows overlooking glittering city skyline",
			"minimalist glass house floating in serene forest with invisible boundaries",
			"rooftop terrace with white canopy bed under endless open sky",
			"infinity pool edge with floating platform bed over crystal clear water",
			"futuristic pod bedroom with smart glass walls displaying aurora borealis",
			"luxury yacht master suite with wraparound ocean panorama and gentle waves",
			"modern cave house carved into dramatic cliffside with ocean views",
			"suspended glass cube bedroom floating in forest canopy among clouds",
			"minimalist concrete bedroom with reflecting pool and zen garden",
		},
	},
	{
		ID:          "fantasy-magical",
		Name:        "Fantasy Magical",
		Description: "Enchanted dreamlike spaces",
		BasePrompt:  "magical fantasy bedroom with ethereal lighting and mystical elements, enchanted interior",
		Variations: []string{
			"fairy garden bedroom with glowing mushrooms and floating flower petals",
			"enchanted castle tower with spiral stairs and mystical moonbeams",
			"underwater palace bedroom with schools of tropical fish swimming by",
			"cloud palace with bed floating among soft cumulus and rainbow bridges",
			"mystical library bedroom with towering bookshelves reaching into mist",
			"dragon's lair bedroom with treasure chests and warm glowing crystals",
			"elven forest bedroom with luminescent leaves and singing wind chimes",
			"wizard's tower bedroom with floating candles and ancient spell books",
			"mermaid's grotto bedroom with pearl-studded walls and bioluminescent coral",
		},
	},
	{
		ID:          "tropical-paradise",
		Name:        "Tropical Paradise",
		Description: "Beach and island-inspired",
		BasePrompt:  "tropical paradise bedroom with ocean views and natural materials, beach resort style",
		Variations: []string{
			"overwater bungalow with glass floor revealing colorful coral reef below",
			"beach villa with open walls letting in ocean breeze and palm shadows",
			"jungle treehouse with rope bridges and exotic bird songs",
			"bamboo pavilion with flowing white curtains and frangipani flowers",
			"coconut grove bedroom with hammocks swaying between palm trees",
			"volcanic island bedroom with natural hot springs and tropical gardens",
			"tiki hut bedroom with thatched roof and traditional Polynesian carvings",
			"beachfront cave bedroom with natural rock formations and tide pools",
			"floating island bedroom surrounded by turquoise lagoon waters",
		},
	},
	{
		ID:          "vintage-romantic",
		Name:        "Vintage Romantic",
		Description: "Classic timeless charm",
		BasePrompt:  "vintage romantic bedroom with antique furniture and soft fabrics, classical interior design",
		Variations: []string{
			"Victorian mansion bedroom with ornate four-poster bed and lace curtains",
			"French countryside chateau with antique armoires and garden views",
			"English cottage bedroom with floral wallpaper and cozy reading nook",
			"Parisian apartment with wrought iron balcony and vintage perfume bottles",
			"Southern plantation bedroom with flowing mosquito nets and magnolia scents",
			"Art Nouveau bedroom with stained glass windows and curved furniture",
			"Medieval castle bedroom with tapestries and candlelit stone walls",
			"1920s jazz age bedroom with velvet curtains and art deco patterns",
			"Rose garden conservatory bedroom with climbing vines and morning dew",
		},
	},
	{
		ID:          "minimalist-zen",
		Name:        "Minimalist Zen",
		Description: "Clean peaceful simplicity",
		BasePrompt:  "minimalist zen bedroom with simple lines and calming atmosphere, japanese-inspired design",
		Variations: []string{
			"Japanese ryokan bedroom with tatami mats and sliding shoji screens",
			"meditation retreat bedroom with singing bowls and incense smoke",
			"Scandinavian cabin bedroom with white linens and birch wood accents",
			"monastery cell bedroom with simple wooden furniture and prayer beads",
			"desert meditation bedroom with sand dunes and endless horizon",
			"mountain monastery bedroom with prayer flags and thin mountain air",
			"zen garden bedroom with raked sand patterns and single bonsai tree",
			"minimalist loft bedroom with concrete walls and single beam of sunlight",
			"floating meditation platform bedroom above tranquil koi pond",
		},
	},
}
