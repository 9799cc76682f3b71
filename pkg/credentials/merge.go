package credentials

// Strategy reconciles an existing domain map with an incoming declarative one.
type Strategy string

const (
	StrategyMerge   Strategy = "merge"
	StrategyReplace Strategy = "replace"
)

// Apply runs the strategy. Unknown strategies fall back to replace, the
// conservative default for declarative sources.
func (s Strategy) Apply(existing, incoming *DomainMap) *DomainMap {
	if s == StrategyMerge {
		return Merge(existing, incoming)
	}
	return Replace(existing, incoming)
}

// Merge reconciles incoming credentials into existing without destroying
// anything incoming does not reference.
//
// Domains join by name, so renaming a domain introduces a new one while the
// old survives untouched. Within a matched domain, incoming credentials
// replace same-ID entries in place and append otherwise. Merge is idempotent:
// Merge(Merge(e, i), i) == Merge(e, i).
func Merge(existing, incoming *DomainMap) *DomainMap {
	out := existing.Clone()
	if out == nil {
		out = NewDomainMap()
	}
	if incoming == nil {
		return out
	}
	for _, d := range incoming.Domains() {
		inCreds := incoming.Credentials(d.Name)
		_, current, found := out.Get(d.Name)
		if !found {
			merged := make([]Credential, len(inCreds))
			copy(merged, inCreds)
			out.Set(d, merged)
			continue
		}
		merged := make([]Credential, len(current))
		copy(merged, current)
		for _, c := range inCreds {
			replaced := false
			for i := range merged {
				if merged[i].ID == c.ID {
					merged[i] = c
					replaced = true
					break
				}
			}
			if !replaced {
				merged = append(merged, c)
			}
		}
		out.Set(d, merged)
	}
	return out
}

// Replace discards everything not present in incoming.
func Replace(_, incoming *DomainMap) *DomainMap {
	if incoming == nil {
		return NewDomainMap()
	}
	return incoming.Clone()
}
