package domain

import "strings"

type Page string

const (
	PageHome   Page = "home"
	PageStocks Page = "stocks"
	PageDogs   Page = "dogs"
)

// Document returns the file a full navigation to p loads.
func (p Page) Document() string {
	switch p {
	case PageStocks:
		return "stocks.html"
	case PageDogs:
		return "dogs.html"
	default:
		return "index.html"
	}
}

// PageContext describes the page a command is being dispatched on.
type PageContext struct {
	Path string
}

func ContextFor(p Page) PageContext {
	return PageContext{Path: "/" + p.Document()}
}

func (c PageContext) Page() Page {
	switch {
	case strings.Contains(c.Path, PageStocks.Document()):
		return PageStocks
	case strings.Contains(c.Path, PageDogs.Document()):
		return PageDogs
	default:
		return PageHome
	}
}

// DestinationFor resolves a spoken destination such as "the dogs page".
// The first of home, stocks, dogs contained in the phrase wins.
func DestinationFor(spoken string) (Page, bool) {
	dest := strings.ToLower(spoken)
	for _, p := range []Page{PageHome, PageStocks, PageDogs} {
		if strings.Contains(dest, string(p)) {
			return p, true
		}
	}
	return "", false
}

// TextCommandPrefix marks text utterances travelling through byte-oriented sources.
const TextCommandPrefix = "__TEXT__:"
