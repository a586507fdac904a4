package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// Tenant identity headers. The credential layer in front of this service
// validates them; here they are only parsed and checked for presence.
const (
	headerClientName = "X-Client-Name"
	headerAppName    = "X-App-Name"
	headerStack      = "X-Stack"
	headerAppURL     = "X-App-Url"
	headerEntityType = "X-Entity-Type"
)

// tenantFromRequest builds the tenant identity and entity type from headers.
func tenantFromRequest(r *http.Request) (domain.Tenant, string, error) {
	t := domain.Tenant{
		ClientName: strings.TrimSpace(r.Header.Get(headerClientName)),
		AppName:    strings.TrimSpace(r.Header.Get(headerAppName)),
		Stack:      domain.Stack(strings.TrimSpace(strings.ToLower(r.Header.Get(headerStack)))),
		AppURL:     strings.TrimSpace(r.Header.Get(headerAppURL)),
	}
	if err := t.Validate(); err != nil {
		return domain.Tenant{}, "", err
	}

	entityType := strings.TrimSpace(r.Header.Get(headerEntityType))
	if entityType == "" {
		return domain.Tenant{}, "", fmt.Errorf("%w: %s header is required", domain.ErrValidation, headerEntityType)
	}

	return t, entityType, nil
}
