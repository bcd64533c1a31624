package document

import (
	"errors"
	"reflect"
	"testing"
)

func TestUpdateServerPort(t *testing.T) {
	doc := sampleDocument()

	next, err := doc.Update(SectionServers, "8080", 0, 2)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if next.Servers[0].Port != 8080 {
		t.Errorf("Servers[0].Port = %v, want 8080", next.Servers[0].Port)
	}
	if next.Servers[0].Name != "alpha" || next.Servers[0].Serial != "A1" {
		t.Errorf("Servers[0] other fields changed: %+v", next.Servers[0])
	}
	if !reflect.DeepEqual(next.Servers[1], doc.Servers[1]) {
		t.Errorf("Servers[1] = %+v, want unchanged %+v", next.Servers[1], doc.Servers[1])
	}
}

func TestUpdateLeavesInputUntouched(t *testing.T) {
	doc := sampleDocument()
	before := sampleDocument()

	next, err := doc.Update(SectionProxies, "renamed", 1, 0)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !reflect.DeepEqual(doc, before) {
		t.Error("Update() modified its input document")
	}
	if next.Proxies[1].Name != "renamed" {
		t.Errorf("Proxies[1].Name = %q, want renamed", next.Proxies[1].Name)
	}
	for _, i := range []int{0, 2} {
		if !reflect.DeepEqual(next.Proxies[i], doc.Proxies[i]) {
			t.Errorf("Proxies[%d] changed: %+v", i, next.Proxies[i])
		}
	}
	if !reflect.DeepEqual(next.Servers, doc.Servers) {
		t.Error("Servers changed by a proxy update")
	}
	if next.Agent != doc.Agent || next.FileShare != doc.FileShare {
		t.Error("single sections changed by a proxy update")
	}
	if &next.Proxies[0] == &doc.Proxies[0] {
		t.Error("updated list shares its backing array with the input")
	}
}

func TestUpdateSingleSections(t *testing.T) {
	doc := sampleDocument()

	next, err := doc.Update(SectionAgent, "127.0.0.1", NoEntry, 0)
	if err != nil {
		t.Fatalf("Update(Agent) error = %v", err)
	}
	if next.Agent.Host != "127.0.0.1" {
		t.Errorf("Agent.Host = %q, want 127.0.0.1", next.Agent.Host)
	}

	next, err = next.Update(SectionFileShare, false, NoEntry, 7)
	if err != nil {
		t.Fatalf("Update(FileShare) error = %v", err)
	}
	if next.FileShare.Enabled {
		t.Error("FileShare.Enabled = true, want false")
	}
	if !doc.FileShare.Enabled {
		t.Error("input FileShare.Enabled was modified")
	}

	next, err = next.Update(SectionFileShare, "2.5", NoEntry, 5)
	if err != nil {
		t.Fatalf("Update(FileShare interval) error = %v", err)
	}
	if next.FileShare.IntervalInSeconds != 2.5 {
		t.Errorf("FileShare.IntervalInSeconds = %v, want 2.5", next.FileShare.IntervalInSeconds)
	}
}

func TestUpdateCoercion(t *testing.T) {
	doc := sampleDocument()

	tests := []struct {
		name  string
		raw   any
		field int
		check func(Proxy) bool
	}{
		{"integer", "9100", 2, func(p Proxy) bool { return p.Port == 9100 }},
		{"integer with suffix", "9100/tcp", 2, func(p Proxy) bool { return p.Port == 9100 }},
		{"integer not a number", "none", 2, func(p Proxy) bool { return p.Port == 0 }},
		{"float", "2.5", 4, func(p Proxy) bool { return p.ReconnectInterval == 2.5 }},
		{"float not a number", "soon", 4, func(p Proxy) bool { return p.ReconnectInterval == 0 }},
		{"boolean", true, 3, func(p Proxy) bool { return p.AutoConnect }},
		{"text", "Tromsø", 6, func(p Proxy) bool { return p.Location == "Tromsø" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := doc.Update(SectionProxies, tt.raw, 0, tt.field)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if !tt.check(next.Proxies[0]) {
				t.Errorf("Update(%v) gave %+v", tt.raw, next.Proxies[0])
			}
		})
	}
}

func TestUpdateErrors(t *testing.T) {
	doc := sampleDocument()

	tests := []struct {
		name    string
		title   string
		raw     any
		entry   int
		field   int
		wantErr error
	}{
		{"unknown section", "Nope", "x", 0, 0, ErrUnknownSection},
		{"entry on single section", SectionAgent, "x", 0, 0, ErrNotList},
		{"missing entry on list", SectionServers, "x", NoEntry, 0, ErrEntryOutOfRange},
		{"entry past end", SectionServers, "x", 2, 0, ErrEntryOutOfRange},
		{"field past end", SectionServers, "x", 0, 3, ErrFieldOutOfRange},
		{"negative field", SectionAgent, "x", NoEntry, -1, ErrFieldOutOfRange},
		{"bool into text", SectionServers, true, 0, 0, ErrRawType},
		{"text into bool", SectionProxies, "true", 0, 3, ErrRawType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := doc.Update(tt.title, tt.raw, tt.entry, tt.field)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(next, doc) {
				t.Error("Update() returned a changed document on error")
			}
		})
	}
}

func TestAdd(t *testing.T) {
	doc := sampleDocument()

	next, err := doc.Add(SectionServers)
	if err != nil {
		t.Fatalf("Add(Servers) error = %v", err)
	}
	if len(next.Servers) != len(doc.Servers)+1 {
		t.Fatalf("len(Servers) = %d, want %d", len(next.Servers), len(doc.Servers)+1)
	}
	if got := next.Servers[len(next.Servers)-1]; got != NewServer() {
		t.Errorf("added server = %+v, want %+v", got, NewServer())
	}
	if len(doc.Servers) != 2 {
		t.Error("Add() modified the input list")
	}

	next, err = doc.Add(SectionProxies)
	if err != nil {
		t.Fatalf("Add(Proxies) error = %v", err)
	}
	want := Proxy{
		Origin:            "127.0.0.1:1001",
		Port:              1001,
		Name:              "PROXY_NEW",
		ReconnectInterval: 10,
		Location:          "NEW_LOCATION",
		Alias:             "NEW_ALIAS",
	}
	if got := next.Proxies[len(next.Proxies)-1]; got != want {
		t.Errorf("added proxy = %+v, want %+v", got, want)
	}

	if _, err := doc.Add(SectionAgent); !errors.Is(err, ErrNotList) {
		t.Errorf("Add(Agent) error = %v, want ErrNotList", err)
	}
	if _, err := doc.Add("Nope"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("Add(Nope) error = %v, want ErrUnknownSection", err)
	}
}

func TestAddToEmptyDocument(t *testing.T) {
	next, err := Default().Add(SectionProxies)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(next.Proxies) != 1 {
		t.Errorf("len(Proxies) = %d, want 1", len(next.Proxies))
	}
}

func TestDelete(t *testing.T) {
	doc := sampleDocument()

	next, err := doc.Delete(SectionProxies, 1)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(next.Proxies) != 2 {
		t.Fatalf("len(Proxies) = %d, want 2", len(next.Proxies))
	}
	if next.Proxies[0].Name != "kitchen" || next.Proxies[1].Name != "attic" {
		t.Errorf("Proxies = %+v, want kitchen then attic", next.Proxies)
	}
	if len(doc.Proxies) != 3 || doc.Proxies[1].Name != "garage" {
		t.Error("Delete() modified the input list")
	}

	if _, err := doc.Delete(SectionServers, 5); !errors.Is(err, ErrEntryOutOfRange) {
		t.Errorf("Delete(5) error = %v, want ErrEntryOutOfRange", err)
	}
	if _, err := doc.Delete(SectionFileShare, 0); !errors.Is(err, ErrNotList) {
		t.Errorf("Delete(File Share) error = %v, want ErrNotList", err)
	}
}

func TestAddThenDeleteRestoresLists(t *testing.T) {
	tests := []struct {
		name  string
		doc   Document
		title string
	}{
		{"servers", sampleDocument(), SectionServers},
		{"proxies", sampleDocument(), SectionProxies},
		{"empty servers", Default(), SectionServers},
		{"empty proxies", Default(), SectionProxies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := tt.doc.Add(tt.title)
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			last := len(added.Servers) - 1
			if tt.title == SectionProxies {
				last = len(added.Proxies) - 1
			}
			got, err := added.Delete(tt.title, last)
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}

			if len(got.Servers) != len(tt.doc.Servers) || len(got.Proxies) != len(tt.doc.Proxies) {
				t.Fatalf("lengths = %d/%d, want %d/%d",
					len(got.Servers), len(got.Proxies), len(tt.doc.Servers), len(tt.doc.Proxies))
			}
			if len(got.Servers) > 0 && !reflect.DeepEqual(got.Servers, tt.doc.Servers) {
				t.Errorf("Servers = %+v, want %+v", got.Servers, tt.doc.Servers)
			}
			if len(got.Proxies) > 0 && !reflect.DeepEqual(got.Proxies, tt.doc.Proxies) {
				t.Errorf("Proxies = %+v, want %+v", got.Proxies, tt.doc.Proxies)
			}
			if got.Agent != tt.doc.Agent || got.FileShare != tt.doc.FileShare {
				t.Error("Add then Delete changed a single section")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	doc, err := Decode([]byte(`{"agent":{"host":"h","port":1},"fileShare":{"enabled":true}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if doc.Servers == nil || doc.Proxies == nil {
		t.Error("Decode() left a nil list")
	}
	if !doc.FileShare.Enabled {
		t.Error("FileShare.Enabled = false, want true")
	}

	if _, err := Decode([]byte(`{`)); err == nil {
		t.Error("Decode() should fail on malformed JSON")
	}
}
