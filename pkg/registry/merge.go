package registry

// Merge combines per-file results into registries. Namespace lists are
// unioned per key, so the outcome does not depend on the order of results
// except for which definition wins when two files declare a schema with
// the same name (the first one).
//
// Merge must run once every file has been collected: translation props on
// default-imported components are resolved against the default exports of
// all files.
func Merge(results ...*FileResult) *Registries {
	r := NewRegistries()

	for _, fr := range results {
		if fr == nil {
			continue
		}
		r.Imports[fr.Path] = fr.Imports
		if fr.DefaultExport != "" {
			r.DefaultExports[fr.Path] = fr.DefaultExport
		}
		for _, s := range fr.Schemas {
			if _, ok := r.Schemas[s.Name]; !ok {
				r.Schemas[s.Name] = s
			}
		}
		for _, o := range fr.KeyObjects {
			r.KeyObjects[Key(o.FilePath, o.Name)] = o
		}
		for _, a := range fr.KeyArrays {
			r.KeyArrays[Key(a.FilePath, a.Name)] = a
		}
		for _, a := range fr.StringArrays {
			r.StringArrays[Key(a.FilePath, a.Name)] = a
		}
		for _, c := range fr.FnCalls {
			key := FnCallKey(c.FilePath, c.FnName, c.ArgIndex)
			existing, ok := r.TranslationFnCalls[key]
			if !ok {
				c.Namespaces = unionInto(nil, c.Namespaces...)
				r.TranslationFnCalls[key] = c
				continue
			}
			existing.Namespaces = unionInto(existing.Namespaces, c.Namespaces...)
			r.TranslationFnCalls[key] = existing
		}
	}

	for _, fr := range results {
		if fr == nil {
			continue
		}
		for _, p := range fr.Props {
			p.ComponentName = r.componentName(fr.Path, p.ComponentName)
			key := PropKey(p.ComponentName, p.PropName)
			existing, ok := r.TranslationProps[key]
			if !ok {
				p.Namespaces = unionInto(nil, p.Namespaces...)
				r.TranslationProps[key] = p
				continue
			}
			existing.Namespaces = unionInto(existing.Namespaces, p.Namespaces...)
			r.TranslationProps[key] = existing
		}
	}
	return r
}

// componentName maps a default-imported component to the name it is
// declared under in its own file.
func (r *Registries) componentName(file, local string) string {
	imp, ok := r.Imports[file].Find(local)
	if !ok || imp.Imported != "default" || imp.Path == "" {
		return local
	}
	if name, ok := r.DefaultExports[imp.Path]; ok {
		return name
	}
	return local
}

// Counts summarizes registry sizes for logging.
func (r *Registries) Counts() map[string]int {
	return map[string]int{
		"schemas":           len(r.Schemas),
		"key_objects":       len(r.KeyObjects),
		"key_arrays":        len(r.KeyArrays),
		"string_arrays":     len(r.StringArrays),
		"translation_props": len(r.TranslationProps),
		"fn_calls":          len(r.TranslationFnCalls),
	}
}

// SchemaNames returns schema names in sorted order.
func (r *Registries) SchemaNames() []string {
	return sortedKeys(r.Schemas)
}
