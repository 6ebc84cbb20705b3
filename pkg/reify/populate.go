package reify

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ndisidore/molt/pkg/document"
)

// populate fills a struct's members from a map node and then runs the two
// validation passes. Writes are applied member by member before validation,
// so a MissingFieldsError or ExtraFieldsError leaves the struct partially
// updated; that is the documented contract, not a defect.
//
// Effective policy per call: the call-site options, with the missing-field
// check forced on by an embedded Strict marker or off by Lenient (type
// markers beat the call site in both directions). Member tag flags beat
// both. Nested members decode with the original call-site options; markers
// scope to the type that declares them.
func populate(dst reflect.Value, m *typeMeta, node *document.Node, o Options, depth int) error {
	t := dst.Type()

	eff := o
	if m.strict {
		eff &^= AllowMissingFields
	}
	if m.lenient {
		eff |= AllowMissingFields
	}
	checkMissing := !eff.Has(AllowMissingFields)
	checkExtra := !eff.Has(AllowExtraFields)
	fold := !eff.Has(CaseSensitive)

	pairs := node.Pairs()
	matched := make([]bool, len(pairs))
	var missing []string

	for i := range m.members {
		mem := &m.members[i]
		if mem.ignore {
			continue
		}

		idx, err := findPair(pairs, mem, fold, t, node)
		if err != nil {
			return err
		}

		if idx < 0 {
			switch {
			case mem.mandatory:
				missing = append(missing, mem.name)
			case mem.allowMissing:
				// Vacuously satisfied: current value stands.
			case checkMissing:
				missing = append(missing, mem.name)
			}
			continue
		}

		matched[idx] = true
		fld := dst.FieldByIndex(mem.index)
		if err := reifyValue(fld, pairs[idx].Value, o, depth+1); err != nil {
			return tagPos(err, mem.typ, pairs[idx].Value)
		}
	}

	if checkExtra {
		var extra []string
		for i := range pairs {
			if !matched[i] {
				extra = append(extra, pairs[i].Key)
			}
		}
		if len(extra) > 0 {
			return &ExtraFieldsError{Type: t, Keys: extra, Pos: node.Pos()}
		}
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Type: t, Fields: missing, Pos: node.Pos()}
	}
	return nil
}

// findPair locates the input pair matching a member's exposed name. With
// folding enabled the whole pair list is scanned so that two keys differing
// only by case surface as ErrAmbiguousKey instead of one being silently
// picked.
func findPair(pairs []document.Pair, mem *member, fold bool, t reflect.Type, node *document.Node) (int, error) {
	found := -1
	for i := range pairs {
		exact := pairs[i].Key == mem.name
		if !exact && (!fold || !strings.EqualFold(pairs[i].Key, mem.name)) {
			continue
		}
		if found >= 0 {
			return -1, &ConversionError{Target: t, Pos: node.Pos(),
				Err: fmt.Errorf("%w: %q and %q both match member %s",
					ErrAmbiguousKey, pairs[found].Key, pairs[i].Key, mem.goName)}
		}
		found = i
		if !fold {
			break // keys are unique, no second exact match possible
		}
	}
	return found, nil
}
