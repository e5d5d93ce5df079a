package scraper

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ivlev/actorreel/internal/fetch"
)

const WikipediaAwardsURL = "https://en.wikipedia.org/wiki/List_of_awards_and_nominations_received_by_"

type Awards struct {
	Wins        int
	Nominations int
}

type Wikipedia struct {
	BaseURL string
	http    *http.Client
}

func NewWikipedia(client *http.Client) *Wikipedia {
	if client == nil {
		client = fetch.NewClient(fetch.DefaultOptions())
	}
	return &Wikipedia{BaseURL: WikipediaAwardsURL, http: client}
}

// Awards reads Academy Award wins and nominations from the actor's awards
// list page. Any failure is logged and yields zeros.
func (w *Wikipedia) Awards(ctx context.Context, actor string) Awards {
	url := w.BaseURL + strings.ReplaceAll(strings.TrimSpace(actor), " ", "_")
	doc, err := fetchDocument(ctx, w.http, url)
	if err != nil {
		log.Printf("[!] Награды %s: %v", actor, err)
		return Awards{}
	}
	a, ok := parseAwards(doc)
	if !ok {
		log.Printf("[!] Награды %s: строка Academy Awards не найдена", actor)
	}
	return a
}

func parseAwards(doc *goquery.Document) (Awards, bool) {
	var a Awards
	found := false
	doc.Find("table.infobox-subbox").First().Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !strings.Contains(row.Text(), "Academy Awards") {
			return true
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return false
		}
		wins, err1 := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		noms, err2 := strconv.Atoi(strings.TrimSpace(cells.Eq(1).Text()))
		if err1 == nil && err2 == nil {
			a = Awards{Wins: wins, Nominations: noms}
			found = true
		}
		return false
	})
	return a, found
}
