package memory

import (
	"context"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

// IdentityResolver resolves API keys from a fixed key to username map, typically
// parsed from the API_KEYS variable.
type IdentityResolver struct {
	keys map[string]string
}

// NewIdentityResolver copies keys so later changes to the map have no effect.
func NewIdentityResolver(keys map[string]string) *IdentityResolver {
	cp := make(map[string]string, len(keys))
	for k, v := range keys {
		cp[k] = v
	}
	return &IdentityResolver{keys: cp}
}

func (r *IdentityResolver) Resolve(ctx context.Context, key string) (string, error) {
	user, ok := r.keys[key]
	if !ok {
		return "", domain.ErrUnknownAPIKey
	}
	return user, nil
}
