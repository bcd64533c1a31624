package document

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldType tells the editor which input to render and the patch functions
// how to coerce the raw value typed by the operator.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInteger
	TypeFloat
	TypeAddress
	TypeBoolean
	TypePassword
)

// String returns a human-readable name for the field type
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeAddress:
		return "address"
	case TypeBoolean:
		return "boolean"
	case TypePassword:
		return "password"
	default:
		return "unknown"
	}
}

// IsText reports whether the field is edited as free text.
func (t FieldType) IsText() bool {
	return t != TypeBoolean
}

// Field describes one editable value of a record.
type Field struct {
	Name  string // JSON key of the value inside its record
	Label string
	Type  FieldType
}

// Section describes one top-level part of the document.
type Section struct {
	Title  string
	Key    string // JSON key of the section inside the document
	List   bool
	Fields []Field
}

// Section titles as shown to the operator and used to address patches.
const (
	SectionAgent     = "Agent"
	SectionServers   = "Servers"
	SectionProxies   = "Proxies"
	SectionFileShare = "File Share"
)

// Schema lists every section in display order.
var Schema = []Section{
	{
		Title: SectionAgent,
		Key:   "agent",
		Fields: []Field{
			{Name: "host", Label: "Host", Type: TypeAddress},
			{Name: "port", Label: "Port", Type: TypeInteger},
		},
	},
	{
		Title: SectionServers,
		Key:   "servers",
		List:  true,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: TypeString},
			{Name: "serial", Label: "Serial", Type: TypeString},
			{Name: "port", Label: "Port", Type: TypeInteger},
		},
	},
	{
		Title: SectionProxies,
		Key:   "proxies",
		List:  true,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: TypeString},
			{Name: "origin", Label: "Origin", Type: TypeString},
			{Name: "port", Label: "Port", Type: TypeInteger},
			{Name: "auto_connect", Label: "Auto Reconnect", Type: TypeBoolean},
			{Name: "reconnect_interval", Label: "Reconnect Interval", Type: TypeFloat},
			{Name: "alias", Label: "Alias", Type: TypeString},
			{Name: "location", Label: "Location", Type: TypeString},
		},
	},
	{
		Title: SectionFileShare,
		Key:   "fileShare",
		Fields: []Field{
			{Name: "server", Label: "Server", Type: TypeString},
			{Name: "username", Label: "Username", Type: TypeString},
			{Name: "password", Label: "Password", Type: TypePassword},
			{Name: "service", Label: "Service", Type: TypeString},
			{Name: "root", Label: "Root", Type: TypeString},
			{Name: "interval_in_seconds", Label: "Interval In Seconds", Type: TypeFloat},
			{Name: "reconnect_interval", Label: "Reconnect Interval", Type: TypeFloat},
			{Name: "enabled", Label: "Enabled", Type: TypeBoolean},
		},
	},
}

// recordTypes maps a section title to the Go type of one of its records.
var recordTypes = map[string]reflect.Type{
	SectionAgent:     reflect.TypeOf(Agent{}),
	SectionServers:   reflect.TypeOf(Server{}),
	SectionProxies:   reflect.TypeOf(Proxy{}),
	SectionFileShare: reflect.TypeOf(FileShare{}),
}

// fieldIndex maps section title and field name to the struct field index.
var fieldIndex map[string]map[string]int

func init() {
	idx, err := buildFieldIndex(Schema)
	if err != nil {
		panic(err)
	}
	fieldIndex = idx
}

// buildFieldIndex resolves every schema field to a struct field with a
// compatible kind.
func buildFieldIndex(schema []Section) (map[string]map[string]int, error) {
	idx := make(map[string]map[string]int, len(schema))
	for _, s := range schema {
		rt, ok := recordTypes[s.Title]
		if !ok {
			return nil, fmt.Errorf("document schema: section %q has no record type", s.Title)
		}

		byTag := make(map[string]int, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			tag := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
			if tag != "" && tag != "-" {
				byTag[tag] = i
			}
		}

		fields := make(map[string]int, len(s.Fields))
		for _, f := range s.Fields {
			i, ok := byTag[f.Name]
			if !ok {
				return nil, fmt.Errorf("document schema: %s has no field %q", rt.Name(), f.Name)
			}
			if !kindMatches(f.Type, rt.Field(i).Type.Kind()) {
				return nil, fmt.Errorf("document schema: %s.%s is %s, not %s",
					rt.Name(), rt.Field(i).Name, rt.Field(i).Type.Kind(), f.Type)
			}
			fields[f.Name] = i
		}
		idx[s.Title] = fields
	}
	return idx, nil
}

func kindMatches(t FieldType, k reflect.Kind) bool {
	switch t {
	case TypeInteger:
		return k == reflect.Int
	case TypeFloat:
		return k == reflect.Float64
	case TypeBoolean:
		return k == reflect.Bool
	default:
		return k == reflect.String
	}
}

// LookupSection returns the schema entry for a section title.
func LookupSection(title string) (Section, bool) {
	for _, s := range Schema {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// FieldCount returns the number of editable fields of a section, or 0 for an
// unknown title.
func FieldCount(title string) int {
	s, ok := LookupSection(title)
	if !ok {
		return 0
	}
	return len(s.Fields)
}

// Values returns the current values of record in schema order. record must
// be the record type of the section (Agent, Server, Proxy or FileShare).
// Integers and floats are returned as int and float64, text as string and
// booleans as bool.
func (s Section) Values(record any) ([]any, error) {
	rv := reflect.ValueOf(record)
	if !rv.IsValid() || rv.Type() != recordTypes[s.Title] {
		return nil, fmt.Errorf("%w: %s expects %s, got %T", ErrRawType, s.Title, recordTypes[s.Title], record)
	}

	values := make([]any, len(s.Fields))
	for i, f := range s.Fields {
		values[i] = rv.Field(fieldIndex[s.Title][f.Name]).Interface()
	}
	return values, nil
}

// setField writes the coerced raw value into the field of the addressable
// record value rv.
func (s Section) setField(rv reflect.Value, fieldPos int, raw any) error {
	if fieldPos < 0 || fieldPos >= len(s.Fields) {
		return fmt.Errorf("%w: %s has %d fields, got %d", ErrFieldOutOfRange, s.Title, len(s.Fields), fieldPos)
	}
	f := s.Fields[fieldPos]
	target := rv.Field(fieldIndex[s.Title][f.Name])

	switch f.Type {
	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%w: %s.%s wants a boolean, got %T", ErrRawType, s.Title, f.Name, raw)
		}
		target.SetBool(b)
		return nil
	}

	text, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: %s.%s wants text, got %T", ErrRawType, s.Title, f.Name, raw)
	}

	switch f.Type {
	case TypeInteger:
		n, _ := ParseLooseInt(text)
		target.SetInt(int64(n))
	case TypeFloat:
		n, _ := ParseLooseFloat(text)
		target.SetFloat(n)
	default:
		target.SetString(text)
	}
	return nil
}
