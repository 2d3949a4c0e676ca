package providers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/internal/resilience"
)

// dvpTableIDs maps each position to its table on the defense-vs-position page
var dvpTableIDs = map[string]string{
	"PG": "ContentPlaceHolder1_GridViewDVP",
	"SG": "ContentPlaceHolder1_GridViewDVP_SG",
	"SF": "ContentPlaceHolder1_GridViewDVP_SF",
	"PF": "ContentPlaceHolder1_GridViewDVP_PF",
	"C":  "ContentPlaceHolder1_GridViewDVP_C",
}

// DVPScraper reads defense-vs-position tables from hashtagbasketball.com
type DVPScraper struct {
	url        string
	httpClient *http.Client
	breakers   *resilience.CircuitBreakerService
	teams      *TeamDirectory
	logger     *logrus.Logger
}

// NewDVPScraper creates a new defense-vs-position scraper
func NewDVPScraper(pageURL string, timeout time.Duration, teams *TeamDirectory, breakers *resilience.CircuitBreakerService, logger *logrus.Logger) *DVPScraper {
	return &DVPScraper{
		url:        pageURL,
		httpClient: &http.Client{Timeout: timeout},
		breakers:   breakers,
		teams:      teams,
		logger:     logger,
	}
}

// ListDefenseVsPositionRanks downloads the page and parses every position table.
// Missing tables and unknown team names are skipped.
func (s *DVPScraper) ListDefenseVsPositionRanks(ctx context.Context) (props.DefenseRanks, error) {
	result, err := s.breakers.Execute(resilience.UpstreamDVP, func() (interface{}, error) {
		req, err := newGetRequest(ctx, s.url, map[string]string{"User-Agent": "Mozilla/5.0"})
		if err != nil {
			return nil, err
		}
		return doRequest(s.httpClient, req)
	})
	if err != nil {
		return nil, err
	}

	return s.parse(result.([]byte))
}

func (s *DVPScraper) parse(page []byte) (props.DefenseRanks, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	ranks := make(props.DefenseRanks)
	for position, id := range dvpTableIDs {
		table := findByID(doc, "table", id)
		if table == nil {
			s.logger.WithField("position", position).Debug("DVP table not found")
			continue
		}
		ranks[position] = s.parseTable(table)
	}
	return ranks, nil
}

func (s *DVPScraper) parseTable(table *html.Node) map[string]map[string]float64 {
	byTeam := make(map[string]map[string]float64)

	rows := findAll(table, "tr")
	if len(rows) == 0 {
		return byTeam
	}

	var headers []string
	for _, th := range findAll(rows[0], "th") {
		headers = append(headers, nodeText(th))
	}

	for _, row := range rows[1:] {
		cells := findAll(row, "td")
		if len(cells) == 0 {
			continue
		}

		values := make(map[string]string, len(cells))
		for i, cell := range cells {
			if i < len(headers) {
				values[headers[i]] = nodeText(cell)
			}
		}

		team, ok := s.teams.ByName(values["TEAM"])
		if !ok {
			continue
		}

		stats := make(map[string]float64, len(values))
		for column, raw := range values {
			if column == "TEAM" {
				continue
			}
			stats[column] = parseCellNumber(raw)
		}
		byTeam[team.Abbreviation] = stats
	}
	return byTeam
}

// parseCellNumber reads a numeric cell; unreadable cells are 0
func parseCellNumber(raw string) float64 {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

func findByID(n *html.Node, tag, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, tag, id); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && child.Data == tag {
				nodes = append(nodes, child)
			}
			walk(child)
		}
	}
	walk(n)
	return nodes
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
