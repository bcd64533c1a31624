package document

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the proxy attribute a view is ordered by.
type SortKey string

const (
	SortByLocation SortKey = "location"
	SortByPort     SortKey = "port"
	SortByName     SortKey = "name"
	SortByOrigin   SortKey = "origin"
)

// DefaultSortKey is the order a fresh editor shows proxies in.
const DefaultSortKey = SortByLocation

// SortKeys lists the valid keys in the order the editor cycles through them.
var SortKeys = []SortKey{SortByLocation, SortByPort, SortByName, SortByOrigin}

// ParseSortKey validates a user supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, k) {
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key %q (valid: location, port, name, origin)", s)
}

// Next returns the key after k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	i := slices.Index(SortKeys, k)
	return SortKeys[(i+1)%len(SortKeys)]
}

// IndexedProxy is a proxy as it appears in a view, together with its
// position in the document's canonical list.
type IndexedProxy struct {
	Index int
	Proxy Proxy
}

// SortProxies returns a view of proxies ordered by key. The sort is stable, so
// sorting an already sorted view by the same key leaves it unchanged. Text
// keys are compared with a locale collator, port numerically.
func SortProxies(proxies []Proxy, key SortKey) []IndexedProxy {
	view := make([]IndexedProxy, len(proxies))
	for i, p := range proxies {
		view[i] = IndexedProxy{Index: i, Proxy: p}
	}

	if key == SortByPort {
		slices.SortStableFunc(view, func(a, b IndexedProxy) int {
			return cmp.Compare(a.Proxy.Port, b.Proxy.Port)
		})
		return view
	}

	text := func(p Proxy) string {
		switch key {
		case SortByName:
			return p.Name
		case SortByOrigin:
			return p.Origin
		default:
			return p.Location
		}
	}
	col := collate.New(language.Und)
	slices.SortStableFunc(view, func(a, b IndexedProxy) int {
		return col.CompareString(text(a.Proxy), text(b.Proxy))
	})
	return view
}

// FilterProxies keeps the entries of view whose location, name, origin or
// decimal port contain text, ignoring case. An empty text keeps everything.
// The order of view is preserved.
func FilterProxies(view []IndexedProxy, text string) []IndexedProxy {
	if text == "" {
		return view
	}
	needle := strings.ToLower(text)
	out := make([]IndexedProxy, 0, len(view))
	for _, ip := range view {
		if ip.Proxy.matches(needle) {
			out = append(out, ip)
		}
	}
	return out
}

func (p Proxy) matches(needle string) bool {
	for _, hay := range []string{p.Location, p.Name, p.Origin, strconv.Itoa(p.Port)} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}
