package document

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// NoEntry addresses a single-record section in Update.
const NoEntry = -1

var (
	ErrUnknownSection  = errors.New("unknown section")
	ErrNotList         = errors.New("section is not a list")
	ErrEntryOutOfRange = errors.New("entry index out of range")
	ErrFieldOutOfRange = errors.New("field index out of range")
	ErrRawType         = errors.New("raw value has the wrong type")
)

// Update returns a copy of d in which field fieldPos of the addressed record
// holds raw, coerced according to the schema field type. List sections are
// addressed by entry; single sections take NoEntry.
//
// Text fields take a string and boolean fields take a bool. Numeric fields
// take a string which is read with ParseLooseInt or ParseLooseFloat; text
// with no numeric prefix stores 0.
func (d Document) Update(title string, raw any, entry, fieldPos int) (Document, error) {
	s, ok := LookupSection(title)
	if !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownSection, title)
	}
	if !s.List && entry != NoEntry {
		return d, fmt.Errorf("%w: %s has no entry %d", ErrNotList, title, entry)
	}

	next := d
	var err error
	switch title {
	case SectionAgent:
		next.Agent, err = updateRecord(s, d.Agent, fieldPos, raw)
	case SectionFileShare:
		next.FileShare, err = updateRecord(s, d.FileShare, fieldPos, raw)
	case SectionServers:
		next.Servers, err = updateEntry(s, d.Servers, entry, fieldPos, raw)
	case SectionProxies:
		next.Proxies, err = updateEntry(s, d.Proxies, entry, fieldPos, raw)
	}
	if err != nil {
		return d, err
	}
	return next, nil
}

// Add returns a copy of d with a placeholder entry appended to the list
// section title.
func (d Document) Add(title string) (Document, error) {
	next := d
	switch title {
	case SectionServers:
		next.Servers = appendCopy(d.Servers, NewServer())
	case SectionProxies:
		next.Proxies = appendCopy(d.Proxies, NewProxy())
	default:
		if _, ok := LookupSection(title); ok {
			return d, fmt.Errorf("%w: cannot add to %s", ErrNotList, title)
		}
		return d, fmt.Errorf("%w: %q", ErrUnknownSection, title)
	}
	return next, nil
}

// Delete returns a copy of d without entry of the list section title.
func (d Document) Delete(title string, entry int) (Document, error) {
	next := d
	var err error
	switch title {
	case SectionServers:
		next.Servers, err = deleteEntry(title, d.Servers, entry)
	case SectionProxies:
		next.Proxies, err = deleteEntry(title, d.Proxies, entry)
	default:
		if _, ok := LookupSection(title); ok {
			return d, fmt.Errorf("%w: cannot delete from %s", ErrNotList, title)
		}
		return d, fmt.Errorf("%w: %q", ErrUnknownSection, title)
	}
	if err != nil {
		return d, err
	}
	return next, nil
}

func updateRecord[T any](s Section, rec T, fieldPos int, raw any) (T, error) {
	if err := s.setField(reflect.ValueOf(&rec).Elem(), fieldPos, raw); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func updateEntry[T any](s Section, list []T, entry, fieldPos int, raw any) ([]T, error) {
	if entry < 0 || entry >= len(list) {
		return nil, fmt.Errorf("%w: %s has %d entries, got %d", ErrEntryOutOfRange, s.Title, len(list), entry)
	}
	rec, err := updateRecord(s, list[entry], fieldPos, raw)
	if err != nil {
		return nil, err
	}
	next := slices.Clone(list)
	next[entry] = rec
	return next, nil
}

func appendCopy[T any](list []T, item T) []T {
	next := make([]T, len(list), len(list)+1)
	copy(next, list)
	return append(next, item)
}

func deleteEntry[T any](title string, list []T, entry int) ([]T, error) {
	if entry < 0 || entry >= len(list) {
		return nil, fmt.Errorf("%w: %s has %d entries, got %d", ErrEntryOutOfRange, title, len(list), entry)
	}
	next := make([]T, 0, len(list)-1)
	next = append(next, list[:entry]...)
	return append(next, list[entry+1:]...), nil
}
