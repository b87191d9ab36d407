package fetch

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PublicIndexURL lists every published Unicode Character Database version
const PublicIndexURL = "https://www.unicode.org/Public/"

var versionDirPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)/?$`)

// ListVersions fetches a directory index such as PublicIndexURL and returns
// the X.Y.Z version directories it links to, newest first.
func ListVersions(ctx context.Context, indexURL string, opts *Options) ([]string, error) {
	result, err := URL(ctx, indexURL, opts)
	if err != nil {
		return nil, err
	}
	return ParseVersions(result.Body)
}

// ParseVersions extracts X.Y.Z version directories from an HTML index page.
func ParseVersions(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]struct{})
	var versions []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimPrefix(href, "./")
		if i := strings.LastIndex(strings.TrimSuffix(href, "/"), "/"); i >= 0 {
			href = href[i+1:]
		}
		if !versionDirPattern.MatchString(href) {
			return
		}
		v := strings.TrimSuffix(href, "/")
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		versions = append(versions, v)
	})

	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
	return versions, nil
}

func compareVersions(a, b string) int {
	pa, pb := versionDirPattern.FindStringSubmatch(a), versionDirPattern.FindStringSubmatch(b)
	for i := 1; i <= 3; i++ {
		x, _ := strconv.Atoi(pa[i])
		y, _ := strconv.Atoi(pb[i])
		if x != y {
			return x - y
		}
	}
	return 0
}
