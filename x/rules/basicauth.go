package rules

import (
	"encoding/base64"
	"strings"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/reqctx"
)

// basicAuth extracts the Basic credentials from the authorization header
// of a request context. Rules operate on the extracted header map, not on
// a live http.Request, so decoding is done here.
func basicAuth(rc *reqctx.RequestContext) (user, password string, ok bool) {
	header := rc.Header(core.HeaderAuthorization)
	if header == "" {
		return "", "", false
	}

	scheme, encoded, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}

	user, password, found = strings.Cut(string(decoded), ":")
	if !found || user == "" {
		return "", "", false
	}
	return user, password, true
}
