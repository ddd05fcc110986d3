// Where: internal/manifest/references.go
// What: Read-only lookup tables built before rules are compiled.
// Why: Resolve setOrigin references without sharing mutable state between strategies.
package manifest

// References indexes the normalized origins by name. Several origins may
// share a name as long as their types differ.
type References struct {
	origins map[string][]OriginSetting
}

// NewReferences builds lookup tables from normalized sections, keeping
// declaration order within each name.
func NewReferences(origins []OriginSetting) References {
	index := make(map[string][]OriginSetting, len(origins))
	for _, origin := range origins {
		index[origin.Name] = append(index[origin.Name], origin)
	}
	return References{origins: index}
}

// Origin returns the origin declared with both name and originType.
func (r References) Origin(name, originType string) (OriginSetting, bool) {
	for _, origin := range r.origins[name] {
		if origin.OriginType == originType {
			return origin, true
		}
	}
	return OriginSetting{}, false
}

// OriginsNamed returns every origin declared under name.
func (r References) OriginsNamed(name string) []OriginSetting {
	return r.origins[name]
}
