package symtab

// builtinGlobals returns the identifiers every global scope starts with.
func builtinGlobals() []string {
	return []string{
		"Array",
		"Boolean",
		"Function",
		"Number",
		"Object",
		"RegExp",
		"String",
		"Error",
		"JSON",
		"Math",
		"NaN",
		"undefined",
	}
}

// BuiltinGlobals exposes the default global seed.
func BuiltinGlobals() []string { return builtinGlobals() }

// mergePrelude combines default builtins with caller provided names.
func mergePrelude(custom []string) []string {
	defaults := builtinGlobals()
	if len(custom) == 0 {
		return defaults
	}
	result := make([]string, 0, len(defaults)+len(custom))
	result = append(result, defaults...)
	result = append(result, custom...)
	return result
}
