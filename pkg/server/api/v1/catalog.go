package v1

import (
	"net/http"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server/api"
)

// CatalogRulesResponse lists the rules of the active catalog.
type CatalogRulesResponse struct {
	Count int                `json:"count"`
	Rules []fingerprint.Rule `json:"rules"`
}

// CatalogCookiesResponse lists the cookie signatures of the active catalog.
type CatalogCookiesResponse struct {
	Count      int                           `json:"count"`
	Signatures []fingerprint.CookieSignature `json:"signatures"`
}

// ListRulesHandler handles GET /api/v1/catalog/rules
//
// Query parameter:
//   - category: optional rule category filter (e.g. "cdn")
func ListRulesHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := ParseCategoryQuery(r)
		if err != nil {
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_REQUEST", err.Error())
			return
		}

		rules := deps.CurrentEngine().Catalog().Rules()
		if category != "" {
			filtered := rules[:0]
			for _, rule := range rules {
				if rule.Category == category {
					filtered = append(filtered, rule)
				}
			}
			rules = filtered
		}
		api.WriteJSON(w, http.StatusOK, CatalogRulesResponse{Count: len(rules), Rules: rules})
	}
}

// ListCookieSignaturesHandler handles GET /api/v1/catalog/cookies
func ListCookieSignaturesHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signatures := deps.CurrentEngine().Catalog().CookieSignatures()
		api.WriteJSON(w, http.StatusOK, CatalogCookiesResponse{Count: len(signatures), Signatures: signatures})
	}
}
