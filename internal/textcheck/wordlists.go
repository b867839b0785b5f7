package textcheck

// phoneticMisses covers near-miss spellings that the fixed leet map does
// not produce: common letter substitutions, swaps and phonetic rewrites
// seen in submissions. Matched exactly and, for candidates of 4 to 12
// characters, by edit-distance similarity.
var phoneticMisses = []string{
	"phuck", "phuk", "fuk", "fck", "fvck", "fukc", "fcuk", "feck",
	"shyt", "shiet", "schit", "shite", "sht",
	"byatch", "biatch", "biotch", "bytch", "bich", "beotch",
	"kunt", "cvnt", "cnut",
	"dik", "dickk", "diick",
	"azzhole", "asshol", "ahole", "arsehole",
	"nigr", "nigga", "negro",
	"whor", "hoor", "hore",
	"puzzy", "pussee", "pusy",
	"fagot", "phag", "faggit",
	"bastad", "basterd",
	"slutt", "sloot",
	"retart", "retrd",
}

// substrWords is the short list matched as substrings inside longer
// candidates. Kept to unambiguous terms only, since substring matching
// has the widest false-positive surface.
var substrWords = []string{
	"fuck",
	"cunt",
	"nigger",
	"faggot",
	"wanker",
	"bitch",
	"asshole",
	"dickhead",
	"motherfuck",
}

// safeWords are legitimate words that the matchers would otherwise flag
// through substring or similarity hits. Any candidate containing one of
// these is exempt.
var safeWords = []string{
	"class", "classic", "classes", "glass", "grass", "brass", "bass",
	"pass", "passion", "compass", "assess", "assist", "assume", "asset",
	"assassin", "massachusetts", "ambassador",
	"shitake", "shiitake",
	"scunthorpe", "penistone", "lightwater",
	"cockpit", "cocktail", "peacock", "hancock", "hitchcock",
	"dickens", "dickinson",
	"analysis", "analytics", "canalside",
	"arsenal", "parse",
	"hello", "shell", "mishit",
	"therapist", "specialist",
	"button", "butter", "butternut",
	"niger", "nigeria", "snigger",
	"sussex", "essex", "middlesex",
	"matsushita", "shitzu",
}
