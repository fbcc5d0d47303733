package scope

import (
	"fmt"

	"github.com/stride-lang/stride/internal/types"
)

// ResolveInternalFunctionName derives a function's internal name from its
// source name and parameter types:
//
//	if name == "main": return "main"
//	h = 0, shift = 0
//	for T in param_types:
//	    h |= ast_type_to_internal_id(T)
//	    h <<= shift
//	    shift += 2
//	return name ++ "$" ++ lowercase_hex6(h)
//
// "main" and extern/foreign declarations are exempt from mangling: their
// internal name is always exactly the source name, so the backend (and any
// host binding) can find them without knowing the parameter list.
func ResolveInternalFunctionName(paramTypes []types.Type, name string, isExternOrMain bool) string {
	if name == "main" || isExternOrMain {
		return name
	}

	h := 0
	shift := 0
	for _, t := range paramTypes {
		h |= t.TypeID()
		h <<= shift
		shift += 2
	}

	return fmt.Sprintf("%s$%06x", name, h)
}
