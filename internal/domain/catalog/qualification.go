package catalog

import "github.com/google/uuid"

// QualifiedProviders applies the qualification policy for a service.
//
// qualifiedIDs is the explicit provider_services relation for the service. If
// it is empty, EVERY provider is treated as qualified. This open-by-default
// fallback is intentional business behavior ("any provider can do any
// unlisted service"), kept as-is pending product confirmation; do not turn it
// into a closed default without one.
func QualifiedProviders(all []*Provider, qualifiedIDs []uuid.UUID) []*Provider {
	if len(qualifiedIDs) == 0 {
		return all
	}
	allowed := make(map[uuid.UUID]struct{}, len(qualifiedIDs))
	for _, id := range qualifiedIDs {
		allowed[id] = struct{}{}
	}
	var out []*Provider
	for _, p := range all {
		if _, ok := allowed[p.ID()]; ok {
			out = append(out, p)
		}
	}
	return out
}

// IsQualified reports whether one provider may perform the service under the
// same policy.
func IsQualified(providerID uuid.UUID, qualifiedIDs []uuid.UUID) bool {
	if len(qualifiedIDs) == 0 {
		return true
	}
	for _, id := range qualifiedIDs {
		if id == providerID {
			return true
		}
	}
	return false
}
