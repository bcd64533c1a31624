package document

import (
	"reflect"
	"testing"
)

func names(view []IndexedProxy) []string {
	out := make([]string, len(view))
	for i, ip := range view {
		out[i] = ip.Proxy.Name
	}
	return out
}

func TestSortProxies(t *testing.T) {
	proxies := sampleDocument().Proxies

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByLocation, []string{"attic", "garage", "kitchen"}},
		{SortByPort, []string{"garage", "attic", "kitchen"}},
		{SortByName, []string{"attic", "garage", "kitchen"}},
		{SortByOrigin, []string{"kitchen", "garage", "attic"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			view := SortProxies(proxies, tt.key)
			if got := names(view); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortProxies(%s) = %v, want %v", tt.key, got, tt.want)
			}
			for _, ip := range view {
				if proxies[ip.Index] != ip.Proxy {
					t.Errorf("view entry %s has canonical index %d pointing at %s", ip.Proxy.Name, ip.Index, proxies[ip.Index].Name)
				}
			}
		})
	}

	if proxies[0].Name != "kitchen" {
		t.Error("SortProxies() reordered its input")
	}
}

func TestSortProxiesIdempotent(t *testing.T) {
	proxies := []Proxy{
		{Name: "b", Location: "same"},
		{Name: "a", Location: "same"},
		{Name: "c", Location: "other"},
	}

	first := SortProxies(proxies, SortByLocation)
	sorted := make([]Proxy, len(first))
	for i, ip := range first {
		sorted[i] = ip.Proxy
	}
	second := SortProxies(sorted, SortByLocation)

	if !reflect.DeepEqual(names(first), names(second)) {
		t.Errorf("re-sorting changed order: %v then %v", names(first), names(second))
	}
	if got := names(first); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Errorf("stable sort = %v, want [c b a]", got)
	}
}

func TestFilterProxies(t *testing.T) {
	view := SortProxies(sampleDocument().Proxies, SortByName)

	tests := []struct {
		text string
		want []string
	}{
		{"", []string{"attic", "garage", "kitchen"}},
		{"OSLO", []string{"kitchen"}},
		{"gar", []string{"garage"}},
		{"10.0.0.7", []string{"attic"}},
		{"900", []string{"attic", "garage", "kitchen"}},
		{"9002", []string{"kitchen"}},
		{"nowhere", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := names(FilterProxies(view, tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterProxies(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFilterSkipsAliasField(t *testing.T) {
	view := SortProxies([]Proxy{{Name: "x", Alias: "hidden"}}, SortByName)
	if got := FilterProxies(view, "hidden"); len(got) != 0 {
		t.Errorf("FilterProxies() matched on alias: %v", names(got))
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(" Port "); err != nil || k != SortByPort {
		t.Errorf("ParseSortKey(Port) = (%v, %v), want port", k, err)
	}
	if _, err := ParseSortKey("alias"); err == nil {
		t.Error("ParseSortKey(alias) should fail")
	}
	if SortByOrigin.Next() != SortByLocation {
		t.Errorf("SortByOrigin.Next() = %v, want location", SortByOrigin.Next())
	}
}
