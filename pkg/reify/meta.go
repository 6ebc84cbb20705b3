package reify

import (
	"reflect"
	"strings"
	"sync"
)

// member describes one decodable struct field: its exposed lookup name,
// reflect access path, and policy flags from the `molt` tag.
type member struct {
	name         string // exposed lookup name (tag rename applied)
	goName       string // declared Go field name
	index        []int
	typ          reflect.Type
	mandatory    bool
	allowMissing bool
	ignore       bool
}

// typeMeta is the cached description of a struct type: its ordered member
// list, type-level policy markers, and whether the type has a post-populate
// hook. Computed once per type and never invalidated; types are immutable
// for the process lifetime.
type typeMeta struct {
	members    []member
	strict     bool // embeds Strict: missing-field check forced on
	lenient    bool // embeds Lenient: missing-field check forced off
	afterReify bool // *T implements AfterReifier
	decodable  int  // members not flagged ignore
}

var _metaCache sync.Map // reflect.Type -> *typeMeta

var (
	_strictType       = reflect.TypeOf(Strict{})
	_lenientType      = reflect.TypeOf(Lenient{})
	_afterReifierType = reflect.TypeOf((*AfterReifier)(nil)).Elem()
)

// metaFor returns the cached metadata for a struct type, computing it on
// first use. Safe for concurrent callers; a racing first use may compute
// twice but both results are identical.
func metaFor(t reflect.Type) *typeMeta {
	if cached, ok := _metaCache.Load(t); ok {
		return cached.(*typeMeta)
	}

	m := buildMeta(t)
	actual, _ := _metaCache.LoadOrStore(t, m)
	return actual.(*typeMeta)
}

func buildMeta(t reflect.Type) *typeMeta {
	m := &typeMeta{
		afterReify: reflect.PointerTo(t).Implements(_afterReifierType),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		if f.Anonymous {
			switch f.Type {
			case _strictType:
				m.strict = true
				continue
			case _lenientType:
				m.lenient = true
				continue
			}
		}
		if f.PkgPath != "" { // unexported
			continue
		}

		mem := member{
			name:   f.Name,
			goName: f.Name,
			index:  f.Index,
			typ:    f.Type,
		}

		tag, hasTag := f.Tag.Lookup("molt")
		if hasTag {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				mem.ignore = true
			} else if parts[0] != "" {
				mem.name = parts[0]
			}
			for _, flag := range parts[1:] {
				switch flag {
				case "mandatory":
					mem.mandatory = true
				case "allowmissing":
					mem.allowMissing = true
				}
			}
		}

		// Callback-shaped fields never count as present or missing.
		switch f.Type.Kind() {
		case reflect.Func, reflect.Chan:
			mem.ignore = true
		}

		if !mem.ignore {
			m.decodable++
		}
		m.members = append(m.members, mem)
	}

	return m
}
