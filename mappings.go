package main

// Static matching tables for Bulgarian grocery listings across
// Kaufland, Lidl and Billa. Keys are lowercase.

// BuildBrandAliasMap returns brand name variants (Cyrillic and Latin
// spellings) mapped to one canonical Latin form.
func BuildBrandAliasMap() map[string]string {
	return map[string]string{
		// Dairy
		"верея":     "vereia",
		"vereia":    "vereia",
		"vereya":    "vereia",
		"олимпус":   "olympus",
		"olympus":   "olympus",
		"данон":     "danone",
		"danone":    "danone",
		"активиа":   "activia",
		"activia":   "activia",
		"президент": "president",
		"president": "president",
		"маджаров":  "madjarov",
		"madjarov":  "madjarov",
		"саяна":     "sayana",
		"боженци":   "bozhentsi",
		"пилос":     "pilos",
		"pilos":     "pilos",
		"milbona":   "milbona",

		// Beverages
		"кока-кола": "coca-cola",
		"кока кола": "coca-cola",
		"coca-cola": "coca-cola",
		"coca cola": "coca-cola",
		"пепси":     "pepsi",
		"pepsi":     "pepsi",
		"фанта":     "fanta",
		"fanta":     "fanta",
		"спрайт":    "sprite",
		"sprite":    "sprite",
		"швепс":     "schweppes",
		"schweppes": "schweppes",
		"ред бул":   "red-bull",
		"red bull":  "red-bull",

		// Water
		"девин":      "devin",
		"devin":      "devin",
		"банкя":      "bankya",
		"bankya":     "bankya",
		"горна баня": "gorna-banya",
		"хисар":      "hisar",

		// Sweets and snacks
		"милка":    "milka",
		"milka":    "milka",
		"орео":     "oreo",
		"oreo":     "oreo",
		"нутела":   "nutella",
		"nutella":  "nutella",
		"фереро":   "ferrero",
		"ferrero":  "ferrero",
		"рафаело":  "raffaello",
		"линдт":    "lindt",
		"lindt":    "lindt",
		"тоблерон": "toblerone",
		"сникърс":  "snickers",
		"snickers": "snickers",
		"марс":     "mars",
		"mars":     "mars",
		"твикс":    "twix",
		"twix":     "twix",
		"баунти":   "bounty",
		"кит кат":  "kitkat",
		"kit kat":  "kitkat",
		"kitkat":   "kitkat",
		"лион":     "lion",
		"lion":     "lion",
		"харибо":   "haribo",
		"haribo":   "haribo",

		// Coffee
		"нескафе": "nescafe",
		"nescafe": "nescafe",
		"якобс":   "jacobs",
		"jacobs":  "jacobs",
		"лаваца":  "lavazza",
		"lavazza": "lavazza",
		"давидоф": "davidoff",
		"чибо":    "tchibo",
		"tchibo":  "tchibo",
		"нестле":  "nestle",
		"nestle":  "nestle",

		// Beer
		"загорка":   "zagorka",
		"zagorka":   "zagorka",
		"каменица":  "kamenitza",
		"kamenitza": "kamenitza",
		"пиринско":  "pirinsko",
		"шуменско":  "shumensko",
		"хайнекен":  "heineken",
		"heineken":  "heineken",
		"туборг":    "tuborg",
		"tuborg":    "tuborg",
		"карлсберг": "carlsberg",
		"carlsberg": "carlsberg",

		// Household
		"ариел":    "ariel",
		"ariel":    "ariel",
		"персил":   "persil",
		"persil":   "persil",
		"ленор":    "lenor",
		"lenor":    "lenor",
		"финиш":    "finish",
		"finish":   "finish",
		"калгон":   "calgon",
		"доместос": "domestos",
		"domestos": "domestos",

		// Personal care
		"нивеа":    "nivea",
		"nivea":    "nivea",
		"гарние":   "garnier",
		"garnier":  "garnier",
		"колгейт":  "colgate",
		"colgate":  "colgate",
		"палмолив": "palmolive",
		"дав":      "dove",
		"dove":     "dove",

		// Store brands
		"k-classic":   "k-classic",
		"к-класик":    "k-classic",
		"clever":      "clever",
		"клевър":      "clever",
		"chef select": "chef-select",
		"бондюел":     "bonduelle",
		"bonduelle":   "bonduelle",
	}
}

// BuildProductSynonymMap returns Bulgarian product-type terms mapped to a
// canonical token, so мляко and milk count as the same word.
func BuildProductSynonymMap() map[string]string {
	return map[string]string{
		// Dairy
		"мляко":    "milk",
		"milk":     "milk",
		"йогурт":   "yogurt",
		"yogurt":   "yogurt",
		"сирене":   "cheese",
		"cheese":   "cheese",
		"кашкавал": "kashkaval",
		"извара":   "cottage-cheese",
		"масло":    "butter",
		"butter":   "butter",
		"сметана":  "cream",
		"cream":    "cream",

		// Meat
		"кайма":   "minced-meat",
		"кебапче": "kebapche",
		"кюфте":   "kyufte",
		"пиле":    "chicken",
		"пилешко": "chicken",
		"chicken": "chicken",
		"свинско": "pork",
		"pork":    "pork",
		"телешко": "beef",
		"beef":    "beef",
		"филе":    "fillet",

		// Produce
		"банани":     "bananas",
		"банан":      "bananas",
		"ябълки":     "apples",
		"ябълка":     "apples",
		"портокали":  "oranges",
		"домати":     "tomatoes",
		"краставици": "cucumbers",
		"картофи":    "potatoes",
		"моркови":    "carrots",
		"лук":        "onions",

		// Bakery
		"хляб":  "bread",
		"bread": "bread",
		"питка": "flatbread",

		// Beverages
		"сок":       "juice",
		"juice":     "juice",
		"нектар":    "nectar",
		"вода":      "water",
		"water":     "water",
		"минерална": "mineral",
		"бира":      "beer",
		"beer":      "beer",
		"вино":      "wine",
		"wine":      "wine",
		"напитка":   "drink",

		// Sweets and snacks
		"шоколад":  "chocolate",
		"бонбони":  "candy",
		"бисквити": "biscuits",
		"вафли":    "wafers",
		"сладолед": "ice-cream",
		"чипс":     "chips",

		// Pantry
		"яйца":    "eggs",
		"eggs":    "eggs",
		"олио":    "oil",
		"oil":     "oil",
		"зехтин":  "olive-oil",
		"ориз":    "rice",
		"rice":    "rice",
		"паста":   "pasta",
		"спагети": "spaghetti",
		"кафе":    "coffee",
		"coffee":  "coffee",
		"чай":     "tea",
		"tea":     "tea",
		"прясно":  "fresh",
		"fresh":   "fresh",
		"кисело":  "sour",
		"краве":   "cow",
		"cow":     "cow",
	}
}

// BuildUnitMap collapses every unit spelling (Bulgarian and Latin) to one
// canonical token per unit family.
func BuildUnitMap() map[string]string {
	return map[string]string{
		"ml":         "ml",
		"мл":         "ml",
		"milliliter": "ml",
		"l":          "l",
		"л":          "l",
		"liter":      "l",
		"litre":      "l",
		"литра":      "l",
		"литър":      "l",
		"g":          "g",
		"г":          "g",
		"гр":         "g",
		"gram":       "g",
		"грам":       "g",
		"грама":      "g",
		"kg":         "kg",
		"кг":         "kg",
		"kilogram":   "kg",
		"килограм":   "kg",
		"килограма":  "kg",
		"pcs":        "pcs",
		"pc":         "pcs",
		"бр":         "pcs",
		"броя":       "pcs",
		"брой":       "pcs",
		"шт":         "pcs",
		"piece":      "pcs",
		"pieces":     "pcs",
	}
}

// BuildStopwords returns words that carry no matching signal. Removal is
// skipped when it would leave a name with zero tokens.
func BuildStopwords() map[string]bool {
	return map[string]bool{
		"и": true, "с": true, "за": true, "от": true, "на": true,
		"в": true, "без": true, "или": true, "а": true, "до": true,
		"по": true, "при": true, "към": true, "под": true, "над": true,
		"със": true, "the": true, "and": true, "of": true, "with": true,
	}
}

// BuildPromoPrefixPatterns returns regex sources for promotional text that
// retailers prepend or append to listing names.
func BuildPromoPrefixPatterns() []string {
	return []string{
		`king\s+оферта\s*-?\s*`,
		`супер\s+цена\s*-?\s*`,
		`само\s+с\s+billa\s+card\s*-?\s*`,
		`сега\s+в\s+billa\s*-?\s*`,
		`продукт[,\s]+маркиран.*$`,
		`от\s+деликатесната\s+витрина`,
		`от\s+нашата\s+пекарна`,
		`различни\s+видове`,
		`различни\s+вкусове`,
		`[®™©]`,
	}
}

// BuildCategoryOverlapMap marks category pairs that are allowed to match
// even though the tags differ. Classification upstream is imperfect, so a
// strict equality gate loses real matches on the boundary categories.
// Both orderings are present.
func BuildCategoryOverlapMap() map[string]bool {
	pairs := [][2]string{
		{"dairy", "eggs"},
		{"dairy", "chilled"},
		{"beverages", "alcohol"},
		{"beverages", "water"},
		{"snacks", "sweets"},
		{"bakery", "sweets"},
		{"frozen", "meat"},
		{"frozen", "ready-meals"},
		{"produce", "herbs"},
	}
	m := make(map[string]bool, len(pairs)*2)
	for _, p := range pairs {
		m[p[0]+"|"+p[1]] = true
		m[p[1]+"|"+p[0]] = true
	}
	return m
}

// BuildCyrillicTranslitMap returns the per-rune BGN/PCGN style
// transliteration used to produce Latin variants of Cyrillic tokens.
func BuildCyrillicTranslitMap() map[rune]string {
	return map[rune]string{
		'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
		'е': "e", 'ж': "zh", 'з': "z", 'и': "i", 'й': "y",
		'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
		'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
		'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh",
		'щ': "sht", 'ъ': "a", 'ь': "y", 'ю': "yu", 'я': "ya",
	}
}

// BuildStoreList returns the fixed retailer set in canonical order.
func BuildStoreList() []string {
	return []string{"Kaufland", "Lidl", "Billa"}
}
