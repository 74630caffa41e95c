package gateway

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"

	"github.com/mizuame/searchgate/x/reqctx"
)

// clusterEndpoints are path roots that address the cluster itself, not any
// index.
var clusterEndpoints = map[string]bool{
	"_cluster": true,
	"_nodes":   true,
	"_cat":     true,
	"_tasks":   true,
	"_stats":   true,
	"_health":  true,
}

// methodAPIs serve both directions; the HTTP method decides which.
var methodAPIs = map[string]bool{
	"_doc":          true,
	"_termvectors":  true,
	"_mtermvectors": true,
}

var readAPIs = map[string]bool{
	"_search":     true,
	"_msearch":    true,
	"_mget":       true,
	"_count":      true,
	"_explain":    true,
	"_field_caps": true,
	"_source":     true,
	"_mapping":    true,
	"_settings":   true,
	"_aliases":    true,
}

// NewRequestContext translates an inbound echo request into the engine's
// request context. The hooks write committed mutations back onto the
// request before it goes upstream, and onto the response the client sees.
func NewRequestContext(c echo.Context) *reqctx.RequestContext {
	req := c.Request()

	headers := make(map[string]string, len(req.Header))
	for name := range req.Header {
		headers[name] = req.Header.Get(name)
	}

	segments := splitPath(req.URL.Path)
	indices, involves := extractIndices(segments)
	repositories, snapshots := extractSnapshot(segments)
	action, isRead := deriveAction(req.Method, segments)

	desc := reqctx.Descriptor{
		ID:              xid.New().String(),
		Action:          action,
		Method:          req.Method,
		Path:            req.URL.Path,
		RemoteAddr:      c.RealIP(),
		Headers:         headers,
		Indices:         indices,
		InvolvesIndices: involves,
		Repositories:    repositories,
		Snapshots:       snapshots,
		ContentLength:   req.ContentLength,
		IsReadRequest:   isRead,
	}

	hooks := reqctx.Hooks{
		WriteIndices: func(committed []string) {
			if involves && len(indices) > 0 && len(committed) > 0 {
				req.URL.Path = replaceFirstSegment(req.URL.Path, strings.Join(committed, ","))
			}
		},
		WriteRepositories: func(committed []string) {
			if len(repositories) > 0 && len(committed) > 0 {
				req.URL.Path = replaceSegment(req.URL.Path, 1, strings.Join(committed, ","))
			}
		},
		WriteSnapshots: func(committed []string) {
			if len(snapshots) > 0 && len(committed) > 0 {
				req.URL.Path = replaceSegment(req.URL.Path, 2, strings.Join(committed, ","))
			}
		},
		WriteResponseHeaders: func(committed map[string]string) {
			for k, v := range committed {
				c.Response().Header().Set(k, v)
			}
		},
		WriteContextHeaders: func(committed map[string]string) {
			for k, v := range committed {
				req.Header.Set(k, v)
			}
		},
	}

	return reqctx.NewRequestContext(desc, hooks)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// extractIndices reads the leading index expression of the path. A request
// hitting a search API without naming indices still involves indices: it
// addresses all of them.
func extractIndices(segments []string) ([]string, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	first := segments[0]
	if !strings.HasPrefix(first, "_") {
		return strings.Split(first, ","), true
	}
	if clusterEndpoints[first] || first == "_snapshot" {
		return nil, false
	}
	return nil, true
}

func extractSnapshot(segments []string) (repositories, snapshots []string) {
	if len(segments) == 0 || segments[0] != "_snapshot" {
		return nil, nil
	}
	if len(segments) > 1 {
		repositories = strings.Split(segments[1], ",")
	}
	if len(segments) > 2 {
		snapshots = strings.Split(segments[2], ",")
	}
	return repositories, snapshots
}

// deriveAction names the operation the way audit records expect:
// cluster:..., indices:admin/..., indices:data/read/... or
// indices:data/write/....
func deriveAction(method string, segments []string) (action string, isRead bool) {
	methodRead := method == "GET" || method == "HEAD"

	if len(segments) == 0 {
		return "cluster:monitor/main", methodRead
	}

	if clusterEndpoints[segments[0]] {
		return "cluster:monitor/" + strings.TrimPrefix(segments[0], "_"), methodRead
	}
	if segments[0] == "_snapshot" {
		return "cluster:admin/snapshot", methodRead
	}

	api := ""
	for _, s := range segments {
		if strings.HasPrefix(s, "_") {
			api = s
		}
	}

	switch {
	case api != "" && readAPIs[api]:
		return "indices:data/read/" + strings.TrimPrefix(api, "_"), true
	case api != "" && methodAPIs[api] && methodRead:
		return "indices:data/read/" + strings.TrimPrefix(api, "_"), true
	case api != "":
		return "indices:data/write/" + strings.TrimPrefix(api, "_"), false
	case methodRead:
		return "indices:data/read/get", true
	case method == "PUT" && len(segments) == 1:
		return "indices:admin/create", false
	case method == "DELETE" && len(segments) == 1:
		return "indices:admin/delete", false
	default:
		return "indices:data/write/index", false
	}
}

func replaceFirstSegment(path, replacement string) string {
	trimmed := strings.TrimPrefix(path, "/")
	rest := ""
	if i := strings.Index(trimmed, "/"); i >= 0 {
		rest = trimmed[i:]
	}
	return "/" + replacement + rest
}

func replaceSegment(path string, index int, replacement string) string {
	segments := splitPath(path)
	if index >= len(segments) {
		return path
	}
	segments[index] = replacement
	return "/" + strings.Join(segments, "/")
}
