package prototype

import "fmt"

// Deck style identifiers as the web app knows them.
const (
	DeckRWS       = "rws-1909"
	DeckThoth     = "thoth"
	DeckMarseille = "marseille"
)

// KnownDeckStyles lists the deck styles prototypes are built for.
var KnownDeckStyles = []string{DeckRWS, DeckThoth, DeckMarseille}

// CardText is a card name paired with the description the text
// prototype is embedded from.
type CardText struct {
	Name        string
	Description string
	Minor       bool
}

// The major arcana in canonical trump order. Order matters: it is the
// tie-break order for ranking.
var majorArcana = []CardText{
	{Name: "The Fool", Description: "a tarot card of the fool, a carefree traveler stepping off a cliff with a small dog"},
	{Name: "The Magician", Description: "a tarot card of the magician, a robed figure at a table with wand cup sword and coin"},
	{Name: "The High Priestess", Description: "a tarot card of the high priestess, a seated woman between two pillars with a crescent moon"},
	{Name: "The Empress", Description: "a tarot card of the empress, a crowned woman on a throne in a field of wheat"},
	{Name: "The Emperor", Description: "a tarot card of the emperor, a bearded ruler on a stone throne holding a scepter"},
	{Name: "The Hierophant", Description: "a tarot card of the hierophant, a religious figure blessing two kneeling acolytes"},
	{Name: "The Lovers", Description: "a tarot card of the lovers, a man and woman beneath an angel in the sky"},
	{Name: "The Chariot", Description: "a tarot card of the chariot, an armored figure in a chariot drawn by two sphinxes"},
	{Name: "Strength", Description: "a tarot card of strength, a woman gently closing the jaws of a lion"},
	{Name: "The Hermit", Description: "a tarot card of the hermit, a cloaked old man holding a lantern on a mountain"},
	{Name: "Wheel of Fortune", Description: "a tarot card of the wheel of fortune, a great wheel with creatures at its corners"},
	{Name: "Justice", Description: "a tarot card of justice, a seated figure holding scales and an upright sword"},
	{Name: "The Hanged Man", Description: "a tarot card of the hanged man, a man suspended upside down from a tree by one foot"},
	{Name: "Death", Description: "a tarot card of death, a skeleton in armor riding a white horse"},
	{Name: "Temperance", Description: "a tarot card of temperance, an angel pouring water between two cups"},
	{Name: "The Devil", Description: "a tarot card of the devil, a horned figure above two chained people"},
	{Name: "The Tower", Description: "a tarot card of the tower, a tower struck by lightning with figures falling"},
	{Name: "The Star", Description: "a tarot card of the star, a kneeling woman pouring water under a large star"},
	{Name: "The Moon", Description: "a tarot card of the moon, a moon over a path between two towers with dogs howling"},
	{Name: "The Sun", Description: "a tarot card of the sun, a radiant sun over a child on a white horse"},
	{Name: "Judgement", Description: "a tarot card of judgement, an angel with a trumpet above rising figures"},
	{Name: "The World", Description: "a tarot card of the world, a dancing figure in a wreath with four creatures"},
}

var minorSuits = []string{"Wands", "Cups", "Swords", "Pentacles"}

var minorRanks = []string{
	"Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Page", "Knight", "Queen", "King",
}

// Vocabulary returns the ordered card list prototypes are built from:
// the 22 majors, optionally followed by the 56 minors.
func Vocabulary(includeMinor bool) []CardText {
	cards := make([]CardText, 0, len(majorArcana)+len(minorSuits)*len(minorRanks))
	cards = append(cards, majorArcana...)
	if !includeMinor {
		return cards
	}
	for _, suit := range minorSuits {
		for _, rank := range minorRanks {
			name := fmt.Sprintf("%s of %s", rank, suit)
			cards = append(cards, CardText{
				Name:        name,
				Description: fmt.Sprintf("a tarot card of the %s", name),
				Minor:       true,
			})
		}
	}
	return cards
}

// PromptFor renders the text actually embedded for a card within a
// deck style, so prototypes reflect the deck's visual idiom.
func PromptFor(deckStyle string, card CardText) string {
	switch deckStyle {
	case DeckThoth:
		return card.Description + ", painted in the abstract geometric style of the thoth deck"
	case DeckMarseille:
		return card.Description + ", in the woodcut style of the tarot de marseille"
	default:
		return card.Description
	}
}
