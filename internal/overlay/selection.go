package overlay

import (
	"sort"
	"strings"

	"github.com/1broseidon/veil/internal/platform"
)

// Selection chooses the displays that receive an overlay: either every
// display, or an explicit set of display IDs. An explicit empty set selects
// nothing, which is different from All.
type Selection struct {
	explicit bool
	ids      map[string]struct{}
}

// All selects every enumerated display.
func All() Selection {
	return Selection{}
}

// Only selects the displays with the given IDs. Only() selects none.
func Only(ids ...string) Selection {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Selection{explicit: true, ids: set}
}

// IsAll reports whether the selection covers every display.
func (s Selection) IsAll() bool {
	return !s.explicit
}

// Includes reports whether a display with id is selected.
func (s Selection) Includes(id string) bool {
	if !s.explicit {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// IDs returns the explicit IDs in sorted order, or nil for All.
func (s Selection) IDs() []string {
	if !s.explicit {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two selections choose the same displays.
func (s Selection) Equal(o Selection) bool {
	if s.explicit != o.explicit {
		return false
	}
	if len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if _, ok := o.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (s Selection) String() string {
	if !s.explicit {
		return "all"
	}
	if len(s.ids) == 0 {
		return "none"
	}
	return strings.Join(s.IDs(), ",")
}

// Resolve returns the selected displays in enumeration order. Displays with
// no area (disabled RandR outputs) and repeated IDs are dropped, also under
// All; selected IDs that are not attached are ignored.
func Resolve(sel Selection, displays []platform.Display) []platform.Display {
	out := make([]platform.Display, 0, len(displays))
	seen := make(map[string]struct{}, len(displays))
	for _, d := range displays {
		if d.Bounds.Empty() {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		if !sel.Includes(d.ID) {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}
