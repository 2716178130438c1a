package codegen

import (
	"github.com/mark3labs/smokegen/internal/naming"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

// goType renders a member type. Structure names are prefixed with qualifier,
// which is empty inside the model package and "widgetmodel." elsewhere.
func goType(ref sm.TypeRef, qualifier string) (string, error) {
	switch ref.Kind {
	case sm.KindString:
		return "string", nil
	case sm.KindInteger:
		return "int", nil
	case sm.KindLong:
		return "int64", nil
	case sm.KindDouble:
		return "float64", nil
	case sm.KindBoolean:
		return "bool", nil
	case sm.KindTimestamp:
		return "time.Time", nil
	case sm.KindBlob:
		return "[]byte", nil
	case sm.KindList:
		elem, err := goType(elementOf(ref), qualifier)
		return "[]" + elem, err
	case sm.KindMap:
		elem, err := goType(elementOf(ref), qualifier)
		return "map[string]" + elem, err
	case sm.KindStructure:
		return qualifier + naming.TypeName(ref.Name), nil
	case sm.KindAny, "":
		return "any", nil
	default:
		return "", inconsistent("", "unsupported member type kind %q", string(ref.Kind))
	}
}

func elementOf(ref sm.TypeRef) sm.TypeRef {
	if ref.Element == nil {
		return sm.TypeRef{Kind: sm.KindAny}
	}
	return *ref.Element
}

// valueCycle reports whether structure to embeds from by value, directly or
// through other structures. Such members must be pointers.
func valueCycle(model *sm.ServiceModel, from, to string) bool {
	seen := map[string]bool{}
	var visit func(name string) bool
	visit = func(name string) bool {
		if name == from {
			return true
		}
		if seen[name] {
			return false
		}
		seen[name] = true
		for _, member := range model.Structures[name].Members {
			if member.Value.Kind == sm.KindStructure && visit(member.Value.Name) {
				return true
			}
		}
		return false
	}
	return visit(to)
}
